package businessflow

import (
	"testing"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAppointmentRepository(testDB.DB)
		flow := NewAppointmentFlow(repo, "UZ", utils.LoadLocationOrUTC("Asia/Tashkent"), logger.Nop())
		ctx := testingutil.CreateTestContext()
		md := NewClientMetadata("198.51.100.4", "curl/8")

		created, err := flow.Create(ctx, &dto.CreateAppointmentRequest{
			FullName:      "Jasur Tursunov",
			Phone:         "90 123 45 67",
			PreferredDate: utils.ToPtr("2026-02-01"),
			Service:       utils.ToPtr(" Implants "),
		}, md)
		require.NoError(t, err)
		assert.Equal(t, "pending", created.Status)

		t.Run("create validation", func(t *testing.T) {
			_, err := flow.Create(ctx, &dto.CreateAppointmentRequest{FullName: "A", Phone: "000"}, md)
			assert.True(t, IsInvalidPhone(err))

			_, err = flow.Create(ctx, &dto.CreateAppointmentRequest{FullName: "A", Phone: "+998901234567", PreferredDate: utils.ToPtr("next monday")}, md)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})

		t.Run("list", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListAppointmentsRequest{})
			require.NoError(t, err)
			require.Len(t, resp.Data, 1)
			got := resp.Data[0]
			assert.Equal(t, "+998901234567", got.Phone)
			assert.Equal(t, "Implants", utils.Deref(got.Service))
			// midnight in Tashkent is 19:00 UTC the day before
			assert.Equal(t, "2026-01-31T19:00:00Z", utils.Deref(got.PreferredDate))

			_, err = flow.List(ctx, &dto.ListAppointmentsRequest{Status: "lost"})
			assert.ErrorIs(t, err, ErrInvalidAppointmentStatus)
		})

		t.Run("status workflow", func(t *testing.T) {
			updated, err := flow.UpdateStatus(ctx, created.ID, "confirmed")
			require.NoError(t, err)
			assert.Equal(t, "confirmed", updated.Status)

			resp, err := flow.List(ctx, &dto.ListAppointmentsRequest{Status: "pending"})
			require.NoError(t, err)
			assert.Empty(t, resp.Data)

			_, err = flow.UpdateStatus(ctx, created.ID, "done")
			assert.ErrorIs(t, err, ErrInvalidAppointmentStatus)

			_, err = flow.UpdateStatus(ctx, 777, "cancelled")
			assert.True(t, IsAppointmentNotFound(err))
		})

		t.Run("delete", func(t *testing.T) {
			require.NoError(t, flow.Delete(ctx, created.ID))
			assert.True(t, IsAppointmentNotFound(flow.Delete(ctx, created.ID)))
		})

		return nil
	})
	require.NoError(t, err)
}
