package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"petpal/internal/domain/appointments"
	"petpal/internal/domain/medical"
	"petpal/internal/domain/pets"
	"petpal/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_EmailUniqueAndImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	u := users.Identity{ID: "u-1", Email: "a@x.com", PasswordHash: "h", Name: "Ana"}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, users.Identity{ID: "u-2", Email: "a@x.com"}), users.ErrEmailTaken)

	changed := u
	changed.Email = "otro@x.com"
	changed.PasswordHash = "pisado"
	changed.Name = "Ana B"
	require.NoError(t, repo.Update(ctx, changed))

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.Name)
	assert.Equal(t, "h", got.PasswordHash)

	require.NoError(t, repo.Delete(ctx, "u-1"))
	_, err = repo.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
	// el email queda libre
	assert.NoError(t, repo.Create(ctx, users.Identity{ID: "u-3", Email: "a@x.com"}))
}

func TestPetRepo_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, pets.Pet{
			ID: fmt.Sprintf("p-%d", i), UserID: "u-1", Name: "n", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "p-x", UserID: "u-2"}))

	list, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "p-0", list[0].ID)

	_, err = repo.GetByIDAndOwner(ctx, "p-x", "u-1")
	assert.ErrorIs(t, err, pets.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, pets.Pet{ID: "p-x", UserID: "u-1"}), pets.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "p-x", "u-1"), pets.ErrNotFound)

	// created_at no se pisa en update
	require.NoError(t, repo.Update(ctx, pets.Pet{ID: "p-0", UserID: "u-1", Name: "nuevo"}))
	got, err := repo.GetByIDAndOwner(ctx, "p-0", "u-1")
	require.NoError(t, err)
	assert.Equal(t, base, got.CreatedAt)
}

func TestPetRepo_ConcurrentUpdatesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()
	require.NoError(t, repo.Create(ctx, pets.Pet{ID: "p-1", UserID: "u-1", Name: "orig"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Update(ctx, pets.Pet{ID: "p-1", UserID: "u-1", Name: fmt.Sprintf("n-%d", i), Breed: fmt.Sprintf("b-%d", i)})
		}(i)
	}
	wg.Wait()

	got, err := repo.GetByIDAndOwner(ctx, "p-1", "u-1")
	require.NoError(t, err)
	// sin mezcla: name y breed vienen del mismo write
	assert.Equal(t, got.Name[2:], got.Breed[2:])
}

func TestAppointmentRepo_Ordering(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo()
	day := func(d int) time.Time { return time.Date(2026, 5, d, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, repo.Create(ctx, appointments.Appointment{ID: "a", UserID: "u-1", PetID: "p-1", AppointmentDate: day(5), Status: appointments.StatusScheduled}))
	require.NoError(t, repo.Create(ctx, appointments.Appointment{ID: "b", UserID: "u-1", PetID: "p-2", AppointmentDate: day(20), Status: appointments.StatusConfirmed}))
	require.NoError(t, repo.Create(ctx, appointments.Appointment{ID: "c", UserID: "u-1", PetID: "p-1", AppointmentDate: day(15), Status: appointments.StatusScheduled}))
	require.NoError(t, repo.Create(ctx, appointments.Appointment{ID: "d", UserID: "u-1", PetID: "p-1", AppointmentDate: day(25), Status: appointments.StatusCancelled}))

	all, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "c", "a"}, appointmentIDs(all))

	byPet, err := repo.ListByPet(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "a"}, appointmentIDs(byPet))

	up, err := repo.ListUpcoming(ctx, "u-1", day(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, appointmentIDs(up))
}

func appointmentIDs(items []appointments.Appointment) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestMedicalRepo_RecentAndByPet(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicalRepo()

	for i := 1; i <= 5; i++ {
		typ := "checkup"
		if i%2 == 0 {
			typ = "vaccination"
		}
		require.NoError(t, repo.Create(ctx, medical.Record{
			ID: fmt.Sprintf("r-%d", i), UserID: "u-1", PetID: "p-1", RecordType: typ,
			VisitDate: time.Date(2026, 1, i, 0, 0, 0, 0, time.UTC),
		}))
	}
	require.NoError(t, repo.Create(ctx, medical.Record{ID: "r-bob", UserID: "u-2", PetID: "p-1", RecordType: "vaccination"}))

	recent, err := repo.ListRecent(ctx, "u-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r-5", recent[0].ID)

	vacc, err := repo.ListByPet(ctx, "u-1", "p-1", "vaccination")
	require.NoError(t, err)
	assert.Len(t, vacc, 2)

	all, err := repo.ListByPet(ctx, "u-1", "p-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestPetRepo_SameTimestampKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("p-%02d", 19-i)
		want = append(want, id)
		require.NoError(t, repo.Create(ctx, pets.Pet{ID: id, UserID: "u-1", CreatedAt: at}))
	}
	require.NoError(t, repo.Delete(ctx, "p-10", "u-1"))

	list, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	got := make([]string, 0, len(list))
	for _, p := range list {
		got = append(got, p.ID)
	}
	assert.Equal(t, append(append([]string{}, want[:9]...), want[10:]...), got)
}

func TestAppointmentRepo_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo()
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for _, id := range []string{"z", "m", "a", "q"} {
		require.NoError(t, repo.Create(ctx, appointments.Appointment{ID: id, UserID: "u-1", AppointmentDate: at}))
	}
	all, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a", "q"}, appointmentIDs(all))
}
