package netlink

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"qbit/internal/buildinfo"
	"qbit/qbitos/event"
)

type mqttClient struct {
	t *Task

	mu     sync.Mutex
	client mqtt.Client
}

func newMQTTClient(t *Task) *mqttClient { return &mqttClient{t: t} }

// topic builds <prefix>/<id>/<suffix>.
func (c *mqttClient) topic(suffix string) string {
	v := c.t.set.Snapshot()
	return v.MQTTPrefix + "/" + v.DeviceID + "/" + suffix
}

func (c *mqttClient) run(stop <-chan struct{}) {
	v := c.t.set.Snapshot()
	if v.MQTTHost == "" {
		return
	}

	opts := mqtt.NewClientOptions().
		AddBroker("tcp://" + v.MQTTHost + ":" + strconv.Itoa(int(v.MQTTPort))).
		SetClientID(v.DeviceID).
		SetUsername(v.MQTTUser).
		SetPassword(v.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectRetryInterval(mqttReconnectMs * time.Millisecond).
		SetWill(c.topic("status"), "offline", 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.t.logf("netlink: mqtt: connection lost: %v", err)
			c.t.conn.Clear(event.BitMQTT)
		})

	client := mqtt.NewClient(opts)
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	// Initial connect retries on the same fixed interval as reconnects.
	for {
		select {
		case <-stop:
			return
		default:
		}
		token := client.Connect()
		token.Wait()
		if token.Error() == nil {
			break
		}
		c.t.logf("netlink: mqtt: connect: %v", token.Error())
		sleepMs(mqttReconnectMs, stop)
	}

	<-stop
	c.publish("status", "offline", true)
	client.Disconnect(250)
}

func (c *mqttClient) onConnect(client mqtt.Client) {
	c.t.conn.Set(event.BitMQTT)
	c.t.logf("netlink: mqtt: connected")

	client.Publish(c.topic("status"), 1, true, "online")
	c.publishInfo(client)

	subs := map[string]mqtt.MessageHandler{
		c.topic("command"):        c.onCommand,
		c.topic("mute/set"):       c.onMuteSet,
		c.topic("animation/next"): c.onAnimationNext,
	}
	for topic, h := range subs {
		if token := client.Subscribe(topic, 1, h); token.Wait() && token.Error() != nil {
			c.t.logf("netlink: mqtt: subscribe %s: %v", topic, token.Error())
		}
	}
}

func (c *mqttClient) publishInfo(client mqtt.Client) {
	v := c.t.set.Snapshot()
	info, err := json.Marshal(map[string]string{
		"id":      v.DeviceID,
		"name":    v.DeviceName,
		"ip":      c.t.link.IP(),
		"version": buildinfo.Short(),
	})
	if err != nil {
		return
	}
	client.Publish(c.topic("info"), 1, true, info)
}

func (c *mqttClient) onCommand(_ mqtt.Client, msg mqtt.Message) {
	c.t.out.SendOrRelease(event.NetworkEvent{Kind: event.Command, Sender: string(msg.Payload())})
}

func (c *mqttClient) onMuteSet(_ mqtt.Client, msg mqtt.Message) {
	c.t.out.SendOrRelease(event.NetworkEvent{
		Kind:   event.Command,
		Sender: "mute",
		Text:   string(msg.Payload()),
	})
}

func (c *mqttClient) onAnimationNext(_ mqtt.Client, _ mqtt.Message) {
	c.t.out.SendOrRelease(event.NetworkEvent{Kind: event.Command, Sender: "animation_next"})
}

// publish is a fire-and-forget publish on the device topic tree; it is a
// no-op while disconnected.
func (c *mqttClient) publish(suffix, payload string, retained bool) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil || !client.IsConnectionOpen() {
		return
	}
	client.Publish(c.topic(suffix), 1, retained, payload)
}
