package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootzsu/orderbot/internal/domain"
)

type fakeRepo struct {
	upsertFn    func(ctx context.Context, u *domain.User) error
	getUserFn   func(ctx context.Context, id int64) (*domain.User, error)
	isOperFn    func(ctx context.Context, id int64) (bool, error)
	addOperFn   func(ctx context.Context, id int64) (bool, error)
	rmOperFn    func(ctx context.Context, id int64) (bool, error)
	listOperFn  func(ctx context.Context) ([]int64, error)
	listUsersFn func(ctx context.Context) ([]domain.User, error)
}

func (f *fakeRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, u)
	}
	return nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, id)
	}
	return nil, ErrUnknownUser
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) ListActiveUserIDs(context.Context) ([]int64, error) { return nil, nil }
func (f *fakeRepo) CountUsers(context.Context) (int64, error)         { return 0, nil }

func (f *fakeRepo) IsOperator(ctx context.Context, id int64) (bool, error) {
	if f.isOperFn != nil {
		return f.isOperFn(ctx, id)
	}
	return false, nil
}

func (f *fakeRepo) AddOperator(ctx context.Context, id int64) (bool, error) {
	if f.addOperFn != nil {
		return f.addOperFn(ctx, id)
	}
	return true, nil
}

func (f *fakeRepo) RemoveOperator(ctx context.Context, id int64) (bool, error) {
	if f.rmOperFn != nil {
		return f.rmOperFn(ctx, id)
	}
	return true, nil
}

func (f *fakeRepo) ListOperators(ctx context.Context) ([]int64, error) {
	if f.listOperFn != nil {
		return f.listOperFn(ctx)
	}
	return nil, nil
}

const initialOp = int64(100)

func TestRegisterFillsDefaults(t *testing.T) {
	var stored *domain.User
	repo := &fakeRepo{upsertFn: func(_ context.Context, u *domain.User) error {
		stored = u
		return nil
	}}
	s := NewService(repo, initialOp)

	require.NoError(t, s.Register(context.Background(), domain.User{ID: 42, FirstName: "Ann"}))
	require.NotNil(t, stored)
	assert.False(t, stored.JoinedAt.IsZero())
	assert.Equal(t, domain.UserActive, stored.Status)
}

func TestInitialOperatorIsAlwaysOperator(t *testing.T) {
	s := NewService(&fakeRepo{}, initialOp)

	ok, err := s.IsOperator(context.Background(), initialOp)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsOperator(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromoteRequiresRegisteredUser(t *testing.T) {
	s := NewService(&fakeRepo{}, initialOp)

	err := s.Promote(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestPromoteDetectsDuplicate(t *testing.T) {
	repo := &fakeRepo{
		getUserFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		addOperFn: func(context.Context, int64) (bool, error) { return false, nil },
	}
	s := NewService(repo, initialOp)

	err := s.Promote(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAlreadyOperator)
}

func TestDemoteProtectsInitialOperator(t *testing.T) {
	calls := 0
	repo := &fakeRepo{rmOperFn: func(context.Context, int64) (bool, error) {
		calls++
		return true, nil
	}}
	s := NewService(repo, initialOp)

	err := s.Demote(context.Background(), initialOp)
	assert.ErrorIs(t, err, ErrInitialOperator)
	assert.Zero(t, calls)
}

func TestDemoteUnknownOperator(t *testing.T) {
	repo := &fakeRepo{rmOperFn: func(context.Context, int64) (bool, error) { return false, nil }}
	s := NewService(repo, initialOp)

	err := s.Demote(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotOperator)
}

func TestOperatorsIncludesInitial(t *testing.T) {
	repo := &fakeRepo{listOperFn: func(context.Context) ([]int64, error) {
		return []int64{7, 9}, nil
	}}
	s := NewService(repo, initialOp)

	ids, err := s.Operators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{initialOp, 7, 9}, ids)
}
