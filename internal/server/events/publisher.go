// Package events publishes account lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/nats-io/nats.go"
)

// Subjects events are published on.
const (
	SubjectAccountRegistered = "account.registered"
	SubjectAccountDeleted    = "account.deleted"
)

// Publisher announces account changes after they were committed.
type Publisher interface {
	AccountRegistered(ctx context.Context, u models.PublicUser) error
	AccountDeleted(ctx context.Context, id string) error
	Close() error
}

// AccountRegisteredEvent is the payload of account.registered.
type AccountRegisteredEvent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AccountDeletedEvent is the payload of account.deleted.
type AccountDeletedEvent struct {
	ID string `json:"id"`
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

var natsConnect = func(url string, opts ...nats.Option) (conn, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

// NATSPublisher publishes JSON events to NATS subjects.
type NATSPublisher struct {
	conn   conn
	logger logging.Logger
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, logger logging.Logger) (*NATSPublisher, error) {
	nc, err := natsConnect(url,
		nats.Name("audiokeeper"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc, logger: logger}, nil
}

// AccountRegistered publishes an AccountRegisteredEvent for u.
func (p *NATSPublisher) AccountRegistered(ctx context.Context, u models.PublicUser) error {
	return p.publish(ctx, SubjectAccountRegistered, AccountRegisteredEvent{ID: u.ID, Username: u.Username, Email: u.Email})
}

// AccountDeleted publishes an AccountDeletedEvent for id.
func (p *NATSPublisher) AccountDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, SubjectAccountDeleted, AccountDeletedEvent{ID: id})
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error(ctx, "nats publish failed", "subject", subject, "error", err)
		return err
	}

	p.logger.Debug(ctx, "event published", "subject", subject)
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

type nopPublisher struct{}

func (nopPublisher) AccountRegistered(context.Context, models.PublicUser) error { return nil }
func (nopPublisher) AccountDeleted(context.Context, string) error               { return nil }
func (nopPublisher) Close() error                                               { return nil }

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}
