package medical

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"petpal/internal/platform/apperr"
	"petpal/internal/platform/fields"
	"petpal/internal/ports/auth"
	"petpal/internal/ports/ownership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Record
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Record{}} }

func (r *testRepo) Create(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) GetByIDAndOwner(_ context.Context, id, userID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *testRepo) filter(keep func(Record) bool) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out
}

func (r *testRepo) ListByOwner(_ context.Context, userID string) ([]Record, error) {
	return r.filter(func(rec Record) bool { return rec.UserID == userID }), nil
}

func (r *testRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Record, error) {
	out, _ := r.ListByOwner(ctx, userID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *testRepo) ListByPet(_ context.Context, userID, petID, recordType string) ([]Record, error) {
	return r.filter(func(rec Record) bool {
		return rec.UserID == userID && rec.PetID == petID && (recordType == "" || rec.RecordType == recordType)
	}), nil
}

func (r *testRepo) Update(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[rec.ID]
	if !ok || cur.UserID != rec.UserID {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakePets struct {
	owners map[string]string
	err    error
}

func (f *fakePets) VerifyPet(_ context.Context, token, petID string) (ownership.PetSnapshot, error) {
	if f.err != nil {
		return ownership.PetSnapshot{}, f.err
	}
	owner, ok := f.owners[petID]
	if !ok || "tok-"+owner != token {
		return ownership.PetSnapshot{}, ownership.ErrNotFoundOrDenied
	}
	return ownership.PetSnapshot{ID: petID, OwnerUserID: owner}, nil
}

var (
	now   = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	alice = auth.Principal{UserID: "u-1", Token: "tok-u-1"}
	bob   = auth.Principal{UserID: "u-2", Token: "tok-u-2"}
)

func newTestService() (*Service, *fakePets) {
	pets := &fakePets{owners: map[string]string{"p-1": "u-1", "p-2": "u-1", "p-bob": "u-2"}}
	svc := NewService(newTestRepo(), pets, nil)
	svc.now = func() time.Time { return now }
	return svc, pets
}

func input(petID, visit, typ, diagnosis string) CreateInput {
	return CreateInput{
		PetID:        petID,
		VisitDate:    visit,
		RecordType:   typ,
		Veterinarian: "Dr. Paz",
		Diagnosis:    diagnosis,
	}
}

func mustCreate(t *testing.T, svc *Service, caller auth.Principal, in CreateInput) Record {
	t.Helper()
	rec, err := svc.Create(context.Background(), caller, in)
	require.NoError(t, err)
	return rec
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	bad := func(js string) fields.Number {
		var n fields.Number
		require.NoError(t, n.UnmarshalJSON([]byte(js)))
		return n
	}

	cases := []struct {
		mut func(*CreateInput)
		msg string
	}{
		{func(in *CreateInput) { in.PetID = "" }, "pet_id is required"},
		{func(in *CreateInput) { in.VisitDate = "" }, "visit_date is required"},
		{func(in *CreateInput) { in.RecordType = "" }, "record_type is required"},
		{func(in *CreateInput) { in.Veterinarian = "" }, "veterinarian is required"},
		{func(in *CreateInput) { in.Diagnosis = "" }, "diagnosis is required"},
		{func(in *CreateInput) { in.VisitDate = "ayer" }, "Invalid visit date format"},
		{func(in *CreateInput) { in.FollowUpDate = "pronto" }, "Invalid follow-up date format"},
		{func(in *CreateInput) { in.Weight = bad(`"pesado"`) }, "Weight must be a number"},
		{func(in *CreateInput) { in.Temperature = bad(`{}`) }, "Temperature must be a number"},
	}
	for _, c := range cases {
		in := input("p-1", "2026-06-01", "checkup", "sano")
		c.mut(&in)
		_, err := svc.Create(context.Background(), alice, in)
		require.Error(t, err, c.msg)
		assert.Equal(t, c.msg, apperr.PublicMessage(err))
	}
}

func TestCreate_NumericAndDates(t *testing.T) {
	svc, _ := newTestService()

	in := input("p-1", "2026-06-01T10:00:00Z", "checkup", "sano")
	require.NoError(t, in.Weight.UnmarshalJSON([]byte(`"12.5"`)))
	in.Temperature = fields.NumberOf(38.6)
	in.FollowUpDate = "2026-07-15"

	rec := mustCreate(t, svc, alice, in)
	require.NotNil(t, rec.Weight)
	assert.Equal(t, 12.5, *rec.Weight)
	assert.Equal(t, 38.6, *rec.Temperature)
	require.NotNil(t, rec.FollowUpDate)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), *rec.FollowUpDate)
	assert.Equal(t, "u-1", rec.UserID)
}

func TestCreate_PetOwnership(t *testing.T) {
	svc, pets := newTestService()

	_, err := svc.Create(context.Background(), alice, input("p-bob", "2026-06-01", "checkup", "x"))
	assert.Equal(t, "Pet not found or access denied", apperr.PublicMessage(err))

	pets.err = errors.New("context deadline exceeded")
	_, err = svc.Create(context.Background(), alice, input("p-1", "2026-06-01", "checkup", "x"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDerivedReads(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, alice, input("p-1", "2026-06-20", "vaccination", "Rabia anual"))
	mustCreate(t, svc, alice, input("p-1", "2026-03-01", "checkup", "Otitis leve"))
	fu := input("p-2", "2026-06-25", "surgery", "Castración")
	fu.FollowUpDate = "2026-07-10"
	fu.Medications = "Meloxicam"
	mustCreate(t, svc, alice, fu)
	mustCreate(t, svc, bob, input("p-bob", "2026-06-28", "vaccination", "Rabia"))

	all, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "surgery", all[0].RecordType, "visit_date desc")

	recent, err := svc.Recent(ctx, "u-1", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	recent, err = svc.Recent(ctx, "u-1", 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	vacc, err := svc.Vaccinations(ctx, alice, "p-1")
	require.NoError(t, err)
	require.Len(t, vacc, 1)
	assert.Equal(t, "Rabia anual", vacc[0].Diagnosis)

	byType, err := svc.ListByPet(ctx, alice, "p-1", "checkup")
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	_, err = svc.ListByPet(ctx, bob, "p-1", "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	st, err := svc.Stats(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalRecords)
	assert.Equal(t, map[string]int{"vaccination": 1, "checkup": 1, "surgery": 1}, st.RecordTypes)
	assert.Equal(t, 2, st.RecentVisits)
	assert.Equal(t, 1, st.UpcomingFollowups)

	items, at, err := svc.Export(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, now, at)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := input("p-1", "2026-06-20", "vaccination", "Rabia anual")
	a.Notes = "sin reacción"
	mustCreate(t, svc, alice, a)
	b := input("p-2", "2026-03-01", "checkup", "Otitis")
	b.Treatment = "Gotas RABIcare"
	mustCreate(t, svc, alice, b)
	mustCreate(t, svc, bob, input("p-bob", "2026-06-28", "vaccination", "Rabia"))

	got, err := svc.Search(ctx, "u-1", SearchFilter{Query: "rabi"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "case-insensitive y solo del caller")

	got, err = svc.Search(ctx, "u-1", SearchFilter{Query: "rabi", RecordType: "checkup"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, "u-1", SearchFilter{PetID: "p-1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, "u-1", SearchFilter{StartDate: "2026-06-01", EndDate: "2026-06-20"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "vaccination", got[0].RecordType)

	got, err = svc.Search(ctx, "u-1", SearchFilter{Query: "dr. paz"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "veterinarian también se busca")

	_, err = svc.Search(ctx, "u-1", SearchFilter{StartDate: "x"})
	assert.Equal(t, "Invalid start date format", apperr.PublicMessage(err))
	_, err = svc.Search(ctx, "u-1", SearchFilter{EndDate: "y"})
	assert.Equal(t, "Invalid end date format", apperr.PublicMessage(err))
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec := mustCreate(t, svc, alice, input("p-1", "2026-06-20", "checkup", "Otitis"))
	s := func(v string) *string { return &v }

	got, err := svc.Update(ctx, alice, rec.ID, UpdateInput{
		Diagnosis:    s("Otitis externa"),
		Temperature:  fields.NumberOf(39.1),
		FollowUpDate: s("2026-07-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Otitis externa", got.Diagnosis)
	assert.Equal(t, 39.1, *got.Temperature)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
	assert.Equal(t, "u-1", got.UserID)

	got, err = svc.Update(ctx, alice, rec.ID, UpdateInput{FollowUpDate: s("")})
	require.NoError(t, err)
	assert.Nil(t, got.FollowUpDate)

	_, err = svc.Update(ctx, alice, rec.ID, UpdateInput{PetID: s("p-bob")})
	assert.Equal(t, "Pet not found or access denied", apperr.PublicMessage(err))

	_, err = svc.Update(ctx, alice, rec.ID, UpdateInput{VisitDate: s("nope")})
	assert.Equal(t, "Invalid visit date format", apperr.PublicMessage(err))

	// visit_date vacío no se ignora
	_, err = svc.Update(ctx, alice, rec.ID, UpdateInput{VisitDate: s("  ")})
	assert.Equal(t, "visit_date is required", apperr.PublicMessage(err))
	kept, err := svc.Get(ctx, rec.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, rec.VisitDate, kept.VisitDate)

	_, err = svc.Update(ctx, bob, rec.ID, UpdateInput{Notes: s("x")})
	assert.Equal(t, "Medical record not found", apperr.PublicMessage(err))

	require.NoError(t, svc.Delete(ctx, rec.ID, "u-1"))
	assert.Error(t, svc.Delete(ctx, rec.ID, "u-1"))
}
