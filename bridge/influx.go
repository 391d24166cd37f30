package bridge

import (
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"

	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/models"
)

const (
	measurementState       = "fan.state"
	measurementEnvironment = "fan.environment"
)

// pointWriter is a non-blocking point sink.
type pointWriter interface {
	Write(measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time)
	Flush()
	Close()
}

type influxWriter struct {
	client influxdb2.Client
	api    api.WriteApi
}

func (w influxWriter) Write(measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) {
	w.api.WritePoint(influxdb2.NewPoint(measurement, tags, fields, ts))
}

func (w influxWriter) Flush() { w.api.Flush() }

func (w influxWriter) Close() {
	w.api.Close()
	w.client.Close()
}

// InfluxSink records device state and sensor readings as InfluxDB points,
// tagged with the device serial number.
type InfluxSink struct {
	w    pointWriter
	tags map[string]string
	log  *logger.Logger
	now  func() time.Time
}

// DialInflux returns a sink writing asynchronously to bucket. Write errors
// are logged as they come back from the server.
func DialInflux(url, token, org, bucket, serial string, log *logger.Logger) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	writeApi := client.WriteApi(org, bucket)
	go func() {
		for err := range writeApi.Errors() {
			log.Errorw("influx write error", "err", err)
		}
	}()
	log.Infow("writing points to InfluxDB", "url", url, "org", org, "bucket", bucket)
	return newInfluxSink(influxWriter{client: client, api: writeApi}, serial, log)
}

func newInfluxSink(w pointWriter, serial string, log *logger.Logger) *InfluxSink {
	return &InfluxSink{
		w:    w,
		tags: map[string]string{"serial": serial},
		log:  log,
		now:  time.Now,
	}
}

func (s *InfluxSink) Name() string { return "influx" }

func (s *InfluxSink) Write(msg models.StatusMessage, snap models.Snapshot, stateful bool) error {
	ts := s.now()

	if stateful {
		if fields := flatten(snap.State); len(fields) > 0 {
			s.w.Write(measurementState, s.tags, fields, ts)
		}
	}
	if msg.Msg == models.MsgEnvironmental {
		values := make(map[string]string, len(msg.Data))
		for k, v := range msg.Data {
			values[k] = v.Current
		}
		if fields := flatten(values); len(fields) > 0 {
			s.w.Write(measurementEnvironment, s.tags, fields, ts)
		}
	}
	return nil
}

// flatten stores numeric values as numbers so they can be graphed and keeps
// everything else as strings.
func flatten(values map[string]string) map[string]interface{} {
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			fields[k] = n
			continue
		}
		fields[k] = v
	}
	return fields
}

func (s *InfluxSink) Close() {
	s.w.Flush()
	s.w.Close()
}
