package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownPayment(t *testing.T) {
	assert.EqualValues(t, 20000, DownPayment(2, 100000))
	assert.EqualValues(t, 5000, DownPayment(1, 5000))
}

func TestStatusAfterPayment(t *testing.T) {
	cases := []struct {
		name                string
		current             Status
		total, paid, amount int64
		want                Status
	}{
		{"first partial", StatusUnpaid, 100000, 0, 20000, StatusPartiallyPaid},
		{"dp equals total", StatusUnpaid, 10000, 0, 10000, StatusPaid},
		{"additional partial", StatusPartiallyPaid, 100000, 20000, 30000, StatusPartiallyPaid},
		{"additional settles", StatusPartiallyPaid, 100000, 20000, 80000, StatusPaid},
		{"zero total", StatusUnpaid, 0, 0, 0, StatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusAfterPayment(tc.current, tc.total, tc.paid, tc.amount))
		})
	}
}

func TestApplyPayment_Lifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	o := &Order{ID: "ORD-1-00001", TotalPrice: 100000, DP: 20000, Status: StatusUnpaid}

	p, err := o.ApplyPayment(Payment{PaymentMethodID: 1, Amount: 20000}, now)
	require.NoError(t, err)
	assert.Equal(t, PaymentDown, p.Type)
	assert.Equal(t, StatusPartiallyPaid, o.Status)
	assert.EqualValues(t, 80000, o.RemainingBalance())

	_, err = o.ApplyPayment(Payment{PaymentMethodID: 1, Amount: 90000}, now)
	require.ErrorIs(t, err, ErrOverpayment)
	assert.Len(t, o.Payments, 1)

	p, err = o.ApplyPayment(Payment{PaymentMethodID: 1, Amount: 80000}, now)
	require.NoError(t, err)
	assert.Equal(t, PaymentAdditional, p.Type)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Zero(t, o.RemainingBalance())

	_, err = o.ApplyPayment(Payment{PaymentMethodID: 1, Amount: 1}, now)
	require.ErrorIs(t, err, ErrNotPayable)
}

func TestCancel(t *testing.T) {
	now := time.Now()
	o := &Order{Status: StatusPartiallyPaid, Attendance: AttendancePending}
	require.NoError(t, o.Cancel(now))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, AttendanceNoShow, o.Attendance)
	require.ErrorIs(t, o.Cancel(now), ErrAlreadyCancelled)

	paid := &Order{Status: StatusPaid}
	require.ErrorIs(t, paid.Cancel(now), ErrOrderSettled)
}

func TestParsers(t *testing.T) {
	s, err := ParseStatus("sudah_lunas")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)
	_, err = ParseStatus("SUDAH LUNAS")
	require.ErrorIs(t, err, ErrInvalidStatus)

	a, err := ParseAttendance("has_attended")
	require.NoError(t, err)
	assert.Equal(t, AttendanceAttended, a)

	pt, err := ParsePaymentType("")
	require.NoError(t, err)
	assert.Equal(t, PaymentType(""), pt)
	_, err = ParsePaymentType("refund")
	require.ErrorIs(t, err, ErrInvalidPaymentType)
}

func TestNewOrderID(t *testing.T) {
	now := time.UnixMilli(1709283600000)
	id, err := NewOrderID(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1709283600000-\d{5}$`), id)
}
