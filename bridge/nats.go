package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/models"
)

// natsConn is the part of *nats.Conn the bridge uses.
type natsConn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Flush() error
	Close()
}

// NATSSink republishes device traffic under a subject prefix:
//
//	<prefix>.status.<kind>  raw status messages
//	<prefix>.state          merged device state
//	<prefix>.sensor         environmental readings as SensorUpdate
//
// and accepts commands on <prefix>.command.
type NATSSink struct {
	conn     natsConn
	subject  string
	location string
	log      *logger.Logger
	now      func() time.Time
}

// DialNATS connects to the server at url.
func DialNATS(url, subject, location string, log *logger.Logger) (*NATSSink, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name("blowcontrol-"+location))
	if err != nil {
		return nil, err
	}
	log.Infow("connected to NATS", "url", url, "subject", subject)
	return newNATSSink(nc, subject, location, log), nil
}

func newNATSSink(conn natsConn, subject, location string, log *logger.Logger) *NATSSink {
	return &NATSSink{
		conn:     conn,
		subject:  strings.TrimSuffix(subject, "."),
		location: location,
		log:      log,
		now:      time.Now,
	}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Subject(suffix string) string {
	return s.subject + "." + suffix
}

func (s *NATSSink) Write(msg models.StatusMessage, snap models.Snapshot, stateful bool) error {
	kind := strings.ToLower(msg.Msg)
	if kind == "" {
		kind = "unknown"
	}
	if err := s.conn.Publish(s.Subject("status."+kind), msg.Raw); err != nil {
		return err
	}

	if stateful {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if err := s.conn.Publish(s.Subject("state"), data); err != nil {
			return err
		}
	}

	if msg.Msg == models.MsgEnvironmental {
		data, err := json.Marshal(models.NewSensorUpdate(s.location, msg, s.now()))
		if err != nil {
			return err
		}
		if err := s.conn.Publish(s.Subject("sensor"), data); err != nil {
			return err
		}
	}
	return nil
}

// Serve answers commands on <prefix>.command until ctx is done.
func (s *NATSSink) Serve(ctx context.Context, d *Dispatcher, timeout time.Duration) error {
	sub, err := s.conn.Subscribe(s.Subject("command"), func(m *nats.Msg) {
		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		s.answer(cmdCtx, d, m)
	})
	if err != nil {
		return err
	}
	s.log.Infow("accepting commands", "subject", s.Subject("command"))

	<-ctx.Done()
	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Debugw("could not unsubscribe from commands", "err", err)
		}
	}
	return nil
}

func (s *NATSSink) answer(ctx context.Context, d *Dispatcher, m *nats.Msg) {
	reply := d.Handle(ctx, m.Data)
	if m.Reply == "" {
		return
	}
	if err := s.conn.Publish(m.Reply, reply); err != nil {
		s.log.Errorw("could not send reply", "subject", m.Reply, "err", err)
	}
}

func (s *NATSSink) Close() {
	if err := s.conn.Flush(); err != nil {
		s.log.Warnw("could not flush NATS connection", "err", err)
	}
	s.conn.Close()
}
