package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/jmaas/s7plan/internal/config"
	"github.com/jmaas/s7plan/internal/report"
)

const connectTimeout = 10 * time.Second

// Publisher forwards step and run results to an MQTT broker as they
// happen, so a dashboard can follow a run live instead of waiting for the
// final report. Publish failures are logged, never fatal: losing a live
// update must not fail the run itself.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *logrus.Logger
}

// Connect establishes the broker session. The configured topic is the
// prefix; step results go to <topic>/step and the final tree to
// <topic>/run.
func Connect(cfg config.MQTTConfig, logger *logrus.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("no MQTT broker configured")
	}
	if logger == nil {
		logger = logrus.New()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("s7plan-%d", time.Now().UnixNano())).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	logger.WithField("broker", cfg.Broker).Debug("MQTT publisher connected")
	return &Publisher{
		client: client,
		topic:  cfg.Topic,
		qos:    byte(cfg.QoS),
		logger: logger,
	}, nil
}

// StepCompleted publishes one step result.
func (p *Publisher) StepCompleted(res report.StepResult) {
	p.publish(p.topic+"/step", res)
}

// RunCompleted publishes the full result tree.
func (p *Publisher) RunCompleted(run report.Run) {
	p.publish(p.topic+"/run", run)
}

// Close flushes and disconnects.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (p *Publisher) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Errorf("MQTT: marshal payload for %s: %v", topic, err)
		return
	}
	token := p.client.Publish(topic, p.qos, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		p.logger.Errorf("MQTT: publish to %s: %v", topic, err)
	}
}
