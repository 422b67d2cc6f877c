package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

func newJournalService(u *entity.User) (*JournalService, *fakeJournals) {
	journals := newFakeJournals()
	users := &fakeUsers{byID: map[string]*entity.User{u.ID: u}}
	return NewJournalService(journals, users, 3, testLogger()), journals
}

func TestJournalFreeTierCap(t *testing.T) {
	user := &entity.User{ID: "user-1"}
	svc, _ := newJournalService(user)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), user.ID, &entity.Journal{Name: "j"})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), user.ID, &entity.Journal{Name: "one too many"})
	assert.ErrorIs(t, err, ErrJournalLimit)

	// Premium lifts the cap.
	user.IsPremium = true
	_, err = svc.Create(context.Background(), user.ID, &entity.Journal{Name: "fourth"})
	assert.NoError(t, err)
}

func TestJournalCreateAssignsOwner(t *testing.T) {
	user := &entity.User{ID: "user-1"}
	svc, _ := newJournalService(user)

	j, err := svc.Create(context.Background(), user.ID, &entity.Journal{Name: "Travel"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, j.UserID)
	assert.NotEmpty(t, j.ID)
}

func TestJournalOwnershipScoped(t *testing.T) {
	user := &entity.User{ID: "user-1"}
	svc, journals := newJournalService(user)

	j, err := svc.Create(context.Background(), user.ID, &entity.Journal{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "someone-else", j.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = svc.Delete(context.Background(), "someone-else", j.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), user.ID, j.ID))
	assert.Empty(t, journals.journals)
}
