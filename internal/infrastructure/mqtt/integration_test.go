//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Integration tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_PublishEventAndStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "webui-desktop-integration"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	var (
		mu       sync.Mutex
		received []string
	)
	subOpts := pahomqtt.NewClientOptions().AddBroker(brokerURL(cfg)).SetClientID("webui-desktop-observer")
	observer := pahomqtt.NewClient(subOpts)
	if tok := observer.Connect(); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("observer connect: %v", tok.Error())
	}
	defer observer.Disconnect(100)

	topics := client.Topics()
	tok := observer.Subscribe(cfg.TopicPrefix+"/"+cfg.Broker.ClientID+"/event/+", 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		mu.Lock()
		received = append(received, msg.Topic())
		mu.Unlock()
	})
	if !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	if err := client.Publish(topics.Event("window_opened"), []byte(`{"kind":"window_opened"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0] != topics.Event("window_opened") {
		t.Errorf("received = %v", received)
	}
}
