package gsheets

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata/sheetdatatest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_InitialisesOnce(t *testing.T) {
	var calls atomic.Int32
	source := &sheetdatatest.Source{}
	release := make(chan struct{})

	p := NewProvider(func(ctx context.Context) (sheetdata.Source, error) {
		calls.Add(1)
		<-release
		return source, nil
	})
	p.Start(context.Background())

	var wg sync.WaitGroup
	results := make([]sheetdata.Source, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := p.Source(context.Background())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Same(t, source, got)
	}
}

func TestProvider_FailureIsShared(t *testing.T) {
	var calls atomic.Int32
	wantErr := errors.New("bad credentials")
	p := NewProvider(func(ctx context.Context) (sheetdata.Source, error) {
		calls.Add(1)
		return nil, wantErr
	})

	for range 3 {
		_, err := p.Source(context.Background())
		assert.ErrorIs(t, err, wantErr)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestProvider_Panic(t *testing.T) {
	p := NewProvider(func(ctx context.Context) (sheetdata.Source, error) {
		panic("boom")
	})

	_, err := p.Source(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestProvider_CallerContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := NewProvider(func(ctx context.Context) (sheetdata.Source, error) {
		<-release
		return &sheetdatatest.Source{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Source(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInit_MissingCredentials(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p := NewProvider(Init("", ClientConfig{}, logger))
	_, err := p.Source(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
