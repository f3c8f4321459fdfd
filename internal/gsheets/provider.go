package gsheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sirupsen/logrus"
)

// InitFunc builds a sheetdata.Source
type InitFunc func(ctx context.Context) (sheetdata.Source, error)

// Provider runs an InitFunc at most once and hands every caller the same result.
// A failed initialisation is not retried.
type Provider struct {
	init   InitFunc
	once   sync.Once
	done   chan struct{}
	source sheetdata.Source
	err    error
}

// NewProvider creates a Provider; initialisation does not begin until Start or Source is called
func NewProvider(init InitFunc) *Provider {
	return &Provider{init: init, done: make(chan struct{})}
}

// Start begins initialisation in the background. Later calls are no-ops.
func (p *Provider) Start(ctx context.Context) {
	p.once.Do(func() {
		go p.run(ctx)
	})
}

func (p *Provider) run(ctx context.Context) {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			p.source, p.err = nil, fmt.Errorf("spreadsheet service initialisation panicked: %v", r)
		}
	}()
	p.source, p.err = p.init(ctx)
}

// Source waits for initialisation to finish and returns its result.
// Returns ctx.Err() if ctx ends first; initialisation itself carries on.
func (p *Provider) Source(ctx context.Context) (sheetdata.Source, error) {
	p.Start(context.WithoutCancel(ctx))
	select {
	case <-p.done:
		return p.source, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Init returns an InitFunc that loads the service account at credentialsPath and creates a Client
func Init(credentialsPath string, cfg ClientConfig, logger *logrus.Logger) InitFunc {
	return func(ctx context.Context) (sheetdata.Source, error) {
		account, err := LoadServiceAccount(credentialsPath)
		if err != nil {
			return nil, err
		}

		client, err := NewClient(ctx, account, cfg, logger)
		if err != nil {
			return nil, err
		}

		logger.WithFields(logrus.Fields{
			"client_email": account.ClientEmail,
			"project_id":   account.ProjectID,
		}).Info("Spreadsheet service initialised")
		return client, nil
	}
}
