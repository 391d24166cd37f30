package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/alittlebrighter/blowcontrol/config"
	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/models"
)

const (
	qos             byte = 0
	disconnectQuiet      = 250 // ms
)

// broker is the part of mqtt.Client the controller uses.
type broker interface {
	IsConnected() bool
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token
}

// MQTTController talks to a single fan through the MQTT broker running on
// the device itself. The serial number is the MQTT username.
type MQTTController struct {
	client broker
	topics config.Topics
	log    *logger.Logger
	now    func() time.Time

	connMu sync.Mutex

	mu         sync.Mutex
	subscribed bool
	handlers   map[int]func(models.StatusMessage)
	nextID     int
}

// NewMQTTController configures a paho client for the device described by
// cfg. Nothing is dialed until the first command.
func NewMQTTController(cfg *config.Config, log *logger.Logger) *MQTTController {
	c := newMQTTController(nil, cfg.Topics(), log)

	brokerURL := cfg.BrokerURL()
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("blowcontrol-" + uuid.NewString()[:8]).
		SetUsername(cfg.SerialNumber).
		SetPassword(cfg.MQTTPassword).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetKeepAlive(60 * time.Second).
		SetOrderMatters(false)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Infow("connected to MQTT broker", "broker", brokerURL)
		c.resubscribe()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnw("lost connection to MQTT broker", "broker", brokerURL, "err", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

func newMQTTController(client broker, topics config.Topics, log *logger.Logger) *MQTTController {
	return &MQTTController{
		client:   client,
		topics:   topics,
		log:      log,
		now:      time.Now,
		handlers: make(map[int]func(models.StatusMessage)),
	}
}

// SetState sends a STATE-SET command.
func (c *MQTTController) SetState(ctx context.Context, data map[string]string) error {
	return c.Send(ctx, models.MsgStateSet, data)
}

// Send publishes a command on the device command topic.
func (c *MQTTController) Send(ctx context.Context, msg string, data map[string]string) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(models.NewCommand(msg, data, c.now()))
	if err != nil {
		return err
	}

	c.log.Infow("sending command", "msg", msg, "topic", c.topics.Command)
	c.log.Debugw("command payload", "payload", string(payload))
	if err := wait(ctx, c.client.Publish(c.topics.Command, qos, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", msg, err)
	}
	return nil
}

// RequestState subscribes to the status topics, asks for the current state
// and returns on the first CURRENT-STATE or STATE-CHANGE. Environmental data
// that shows up first is folded into the snapshot.
func (c *MQTTController) RequestState(ctx context.Context) (models.Snapshot, error) {
	if err := c.connect(ctx); err != nil {
		return models.Snapshot{}, err
	}

	msgs := make(chan models.StatusMessage, 16)
	remove, err := c.addHandler(ctx, func(m models.StatusMessage) {
		select {
		case msgs <- m:
		default:
			c.log.Debugw("state reply buffer full, dropping message", "msg", m.Msg)
		}
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	defer remove()

	if err := c.Send(ctx, models.MsgRequestCurrentState, nil); err != nil {
		return models.Snapshot{}, err
	}

	var snap models.Snapshot
	for {
		select {
		case m := <-msgs:
			snap.Apply(m, c.now())
			if m.Msg == models.MsgCurrentState || m.Msg == models.MsgStateChange {
				c.log.Debugw("received device state", "msg", m.Msg, "keys", len(snap.State))
				return snap, nil
			}
		case <-ctx.Done():
			return snap, fmt.Errorf("no state response from device: %w", ctx.Err())
		}
	}
}

// Listen hands every status message to handle until ctx is done.
func (c *MQTTController) Listen(ctx context.Context, handle func(models.StatusMessage)) error {
	if err := c.connect(ctx); err != nil {
		return err
	}
	remove, err := c.addHandler(ctx, handle)
	if err != nil {
		return err
	}
	defer remove()

	c.log.Infow("listening for status messages", "current", c.topics.StatusCurrent, "fault", c.topics.StatusFault)
	<-ctx.Done()
	return nil
}

func (c *MQTTController) Close() {
	if c.client.IsConnected() {
		c.log.Infow("disconnecting from MQTT broker")
		c.client.Disconnect(disconnectQuiet)
	}
}

func (c *MQTTController) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.client.IsConnected() {
		return nil
	}
	if err := wait(ctx, c.client.Connect()); err != nil {
		return fmt.Errorf("connect to device: %w", err)
	}
	return nil
}

func (c *MQTTController) filters() map[string]byte {
	return map[string]byte{
		c.topics.StatusCurrent: qos,
		c.topics.StatusFault:   qos,
	}
}

// addHandler registers handle and subscribes to the status topics the first
// time. The subscription itself lives until the client disconnects.
func (c *MQTTController) addHandler(ctx context.Context, handle func(models.StatusMessage)) (func(), error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handle
	subscribed := c.subscribed
	c.mu.Unlock()

	remove := func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}

	if subscribed {
		return remove, nil
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.mu.Lock()
	subscribed = c.subscribed
	c.mu.Unlock()
	if subscribed {
		return remove, nil
	}

	if err := wait(ctx, c.client.SubscribeMultiple(c.filters(), c.dispatch)); err != nil {
		remove()
		return nil, fmt.Errorf("subscribe to status topics: %w", err)
	}
	c.mu.Lock()
	c.subscribed = true
	c.mu.Unlock()
	return remove, nil
}

func (c *MQTTController) dispatch(_ mqtt.Client, m mqtt.Message) {
	msg, err := models.ParseStatus(m.Topic(), m.Payload())
	if err != nil {
		c.log.Warnw("dropping status message", "topic", m.Topic(), "err", err)
		return
	}

	c.mu.Lock()
	handlers := make([]func(models.StatusMessage), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

// resubscribe restores the status subscription after an automatic
// reconnect. A clean session drops it on the broker side.
func (c *MQTTController) resubscribe() {
	c.mu.Lock()
	subscribed := c.subscribed
	c.mu.Unlock()
	if !subscribed {
		return
	}

	token := c.client.SubscribeMultiple(c.filters(), c.dispatch)
	go func() {
		if token.Wait() && token.Error() != nil {
			c.log.Errorw("could not restore status subscription", "err", token.Error())
		}
	}()
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
