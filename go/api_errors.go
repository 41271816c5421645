package clinicserver

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/application"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	identityapp "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/application"
	masterapp "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/application"
	masterports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	ordersapp "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/application"
	orderdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	orderports "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	scheduleapp "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	apierrors "github.com/ignasiusberneo/clinic-admin/internal/shared/errors"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/validation"
)

var responder = newResponder()

// newResponder maps application errors to problems. Order matters: specific
// sentinels come before the category errors that wrap them.
func newResponder() *apierrors.ChainedResponder {
	var (
		match  = apierrors.Match
		detail = apierrors.MatchDetail
	)
	return apierrors.NewChainedResponder("",
		// identity
		match(identityapp.ErrInvalidCredentials, apierrors.ErrUnauthorized.WithMessage("Username atau password salah")),
		match(identityapp.ErrAuthentication, apierrors.ErrUnauthorized),
		detail(identityapp.ErrInvalidInput, apierrors.ErrValidation),
		detail(identityapp.ErrConflict, apierrors.ErrConflict.WithMessage("Username atau nama role sudah digunakan")),
		detail(identityapp.ErrNotFound, apierrors.ErrNotFound.WithMessage("Pengguna atau role tidak ditemukan")),

		// orders
		match(ordersapp.ErrConsistency, apierrors.ErrInternal),
		detail(ordersapp.ErrSlotTaken, apierrors.ErrConflict.WithMessage("Slot sudah diambil orang lain, silakan pilih jadwal lain")),
		detail(catalogports.ErrInsufficientStock, apierrors.ErrConflict.WithMessage("Stok tidak mencukupi")),
		detail(ordersapp.ErrIdempotencyReuse, apierrors.ErrConflict.WithMessage("Idempotency-Key sudah dipakai untuk permintaan yang berbeda")),
		detail(ordersapp.ErrConflict, apierrors.ErrConflict.WithMessage("Data sedang diubah oleh pengguna lain, silakan coba lagi")),
		detail(orderdomain.ErrAlreadyCancelled, apierrors.ErrInvalidState.WithMessage("Order sudah dibatalkan")),
		detail(orderdomain.ErrOrderSettled, apierrors.ErrInvalidState.WithMessage("Order yang sudah lunas tidak dapat dibatalkan")),
		detail(orderdomain.ErrNotPayable, apierrors.ErrInvalidState.WithMessage("Order tidak dapat dibayar")),
		detail(orderdomain.ErrNotModifiable, apierrors.ErrInvalidState.WithMessage("Order tidak dapat diubah")),
		detail(ordersapp.ErrInvalidState, apierrors.ErrInvalidState),
		detail(orderdomain.ErrOverpayment, apierrors.ErrValidation.WithMessage("Jumlah pembayaran melebihi sisa tagihan")),
		detail(ordersapp.ErrInactiveMethod, apierrors.ErrValidation.WithMessage("Metode pembayaran tidak aktif")),
		detail(ordersapp.ErrServiceNotBookable, apierrors.ErrValidation.WithMessage("Layanan tidak memiliki produk yang dapat dijadwalkan")),
		detail(ordersapp.ErrSameSchedule, apierrors.ErrValidation.WithMessage("Jadwal baru sama dengan jadwal saat ini")),
		detail(ordersapp.ErrScheduleMismatch, apierrors.ErrValidation.WithMessage("Jadwal tidak sesuai dengan produk atau area bisnis")),
		detail(ordersapp.ErrNotScheduled, apierrors.ErrValidation.WithMessage("Item order tidak memiliki jadwal")),
		detail(orderdomain.ErrAreaMismatch, apierrors.ErrValidation.WithMessage("Data berasal dari area bisnis lain")),
		detail(ordersapp.ErrInvalidInput, apierrors.ErrValidation),

		// catalog, schedules and master data
		detail(catalogapp.ErrInvalidInput, apierrors.ErrValidation),
		detail(scheduleapp.ErrInvalidInput, apierrors.ErrValidation),
		detail(masterapp.ErrInvalidInput, apierrors.ErrValidation),
		detail(scheduleapp.ErrUnknownReference, apierrors.ErrNotFound.WithMessage("Data referensi tidak ditemukan")),
		detail(masterapp.ErrUnknownReference, apierrors.ErrNotFound.WithMessage("Data referensi tidak ditemukan")),

		// not found, most specific first
		detail(orderports.ErrNotFound, apierrors.ErrNotFound.WithMessage("Order tidak ditemukan")),
		detail(orderdomain.ErrItemNotFound, apierrors.ErrNotFound.WithMessage("Item order tidak ditemukan")),
		detail(scheduleports.ErrNotFound, apierrors.ErrNotFound.WithMessage("Jadwal tidak ditemukan")),
		detail(catalogports.ErrNotFound, apierrors.ErrNotFound.WithMessage("Produk atau layanan tidak ditemukan")),
		detail(masterports.ErrNotFound, apierrors.ErrNotFound),
		detail(ordersapp.ErrNotFound, apierrors.ErrNotFound),
	)
}

// SetErrorLogger routes the raw errors behind 5xx answers to logger.
func SetErrorLogger(logger *slog.Logger) {
	if logger != nil {
		responder.WithLogger(logger)
	}
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, err error) {
	if fields, ok := validation.FieldErrors(err); ok {
		responder.ValidationFailed(c, fields)
		return
	}
	responder.BadRequest(c, "request body is not valid JSON")
}

func respondBadRequest(c *gin.Context, err error) {
	responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

func respondUnauthorized(c *gin.Context) {
	respondProblem(c, apierrors.ErrUnauthorized)
}

func respondForbidden(c *gin.Context) {
	respondProblem(c, apierrors.ErrForbidden)
}

// TooManyRequests answers a throttled request. It plugs into the rate limit middleware.
func TooManyRequests(c *gin.Context) {
	respondProblem(c, apierrors.ErrTooManyRequests)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
