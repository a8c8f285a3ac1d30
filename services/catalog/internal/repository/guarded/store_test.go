package guarded

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/logger"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/resilience"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/memory"
)

// failingStore fails every count with err.
type failingStore struct {
	repository.CatalogStore
	err   error
	calls int
}

func (f *failingStore) CountProducts(context.Context, query.Predicate) (int, error) {
	f.calls++
	return 0, f.err
}

func newBreaker() *resilience.Breaker {
	return resilience.NewBreaker(resilience.Config{
		Name:         "catalog-store",
		MaxRequests:  1,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  3,
	}, IsExpected, resilience.NewBreakerMetrics(prometheus.NewRegistry()), logger.Discard())
}

func TestStore_PassesThroughResults(t *testing.T) {
	s := New(memory.New(demo.Build(time.Now())), newBreaker())

	n, err := s.CountProducts(context.Background(), query.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	facets, err := s.CategoryFacets(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, facets)
}

func TestStore_NotFoundPassesThrough(t *testing.T) {
	b := newBreaker()
	s := New(memory.New(demo.Build(time.Now())), b)

	for i := 0; i < 5; i++ {
		_, err := s.GetProduct(context.Background(), "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestStore_DriverFailureBecomesStoreUnavailable(t *testing.T) {
	inner := &failingStore{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	s := New(inner, newBreaker())

	_, err := s.CountProducts(context.Background(), query.Predicate{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STORE_UNAVAILABLE", appErr.Code)
	assert.NotContains(t, appErr.Message, "10.0.0.5")
}

func TestStore_OpenBreakerShortCircuits(t *testing.T) {
	inner := &failingStore{err: errors.New("connection refused")}
	b := newBreaker()
	s := New(inner, b)

	for i := 0; i < 3; i++ {
		_, _ = s.CountProducts(context.Background(), query.Predicate{})
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	_, err := s.CountProducts(context.Background(), query.Predicate{})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, 3, inner.calls)
}

func TestStore_CancellationPassesThrough(t *testing.T) {
	inner := &failingStore{err: context.Canceled}
	b := newBreaker()
	s := New(inner, b)

	for i := 0; i < 5; i++ {
		_, err := s.CountProducts(context.Background(), query.Predicate{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, apperrors.ErrStoreUnavailable)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
