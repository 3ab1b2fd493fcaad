//go:build integration

package profile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"sokrate-backend-go/internal/models"
)

type stubLoader struct {
	calls   atomic.Int32
	profile *models.Profile
}

func (l *stubLoader) GetProfile(_ context.Context, _ string) (*models.Profile, error) {
	l.calls.Add(1)
	return l.profile, nil
}

type RedisLoaderSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
}

func TestRedisLoaderSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLoaderSuite))
}

func (s *RedisLoaderSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	s.client, err = NewRedisClient(ctx, url)
	s.Require().NoError(err)
}

func (s *RedisLoaderSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisLoaderSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisLoaderSuite) TestReadThroughAndInvalidate() {
	ctx := context.Background()
	next := &stubLoader{profile: &models.Profile{ID: "uid-1", Plan: models.PlanPro}}
	loader := NewRedisLoader(s.client, next, time.Minute, nil)

	p, err := loader.GetProfile(ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(models.PlanPro, p.Plan)

	p, err = loader.GetProfile(ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal("uid-1", p.ID)
	s.Equal(int32(1), next.calls.Load())

	s.Require().NoError(loader.Invalidate(ctx, "uid-1"))
	_, err = loader.GetProfile(ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(int32(2), next.calls.Load())
}

func (s *RedisLoaderSuite) TestMissingProfileIsRemembered() {
	ctx := context.Background()
	next := &stubLoader{}
	loader := NewRedisLoader(s.client, next, time.Minute, nil)

	p, err := loader.GetProfile(ctx, "uid-none")
	s.Require().NoError(err)
	s.Nil(p)
	p, err = loader.GetProfile(ctx, "uid-none")
	s.Require().NoError(err)
	s.Nil(p)
	s.Equal(int32(1), next.calls.Load())
}

func (s *RedisLoaderSuite) TestFetchInFlightDuringInvalidateDoesNotRepopulate() {
	ctx := context.Background()
	source := newGatedLoader(models.PlanFree)
	loader := NewRedisLoader(s.client, source, time.Minute, nil)
	c := NewCache(loader, nil, nil)

	staleDone := make(chan *models.Profile)
	go func() {
		p, _ := c.Get(ctx, "uid-1")
		staleDone <- p
	}()
	<-source.started

	// The upgrade lands while the first read is still waiting on the source.
	source.setPlan(models.PlanPro)
	c.Invalidate(ctx, "uid-1")

	close(source.release)
	stale := <-staleDone
	s.Require().NotNil(stale)
	s.Equal(models.PlanFree, stale.Plan)

	exists, err := s.client.Exists(ctx, keyPrefix+"uid-1").Result()
	s.Require().NoError(err)
	s.Zero(exists)

	p, err := c.Get(ctx, "uid-1")
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Equal(models.PlanPro, p.Plan)
	s.Equal(int32(2), source.calls.Load())
}

func (s *RedisLoaderSuite) TestInvalidateBumpsVersion() {
	ctx := context.Background()
	loader := NewRedisLoader(s.client, &stubLoader{}, time.Minute, nil)

	s.Require().NoError(loader.Invalidate(ctx, "uid-1"))
	s.Require().NoError(loader.Invalidate(ctx, "uid-1"))

	v, err := s.client.Get(ctx, versionPrefix+"uid-1").Result()
	s.Require().NoError(err)
	s.Equal("2", v)
	ttl, err := s.client.TTL(ctx, versionPrefix+"uid-1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Hour)
}

func (s *RedisLoaderSuite) TestNewRedisClientEmptyURL() {
	client, err := NewRedisClient(context.Background(), "")
	s.NoError(err)
	s.Nil(client)
}
