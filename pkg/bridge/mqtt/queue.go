package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue wraps an MQTT client with topics relative to TopicPrefix.
type Queue struct {
	Client      paho.Client
	TopicPrefix string

	subsLock sync.RWMutex
	subs     map[string][]*Subscription
}

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	topic   string
	handler Handler
}

// MatchTopic matches topic with pattern which may contain + and #.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) || (token != "+" && token != tokensT[i]) {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

// ClientOptionsFromURL creates ClientOptions from URL
// mqtt://[user:pass@]host:port/topic-prefix/[?client-id=id].
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, strings.TrimPrefix(u.Path, "/"), nil
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string][]*Subscription)}
	options.SetOnConnectHandler(q.onConnect)
	options.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, topicPrefix), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub subscribes a topic.
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.subsLock.Lock()
	subs := q.subs[topic]
	q.subs[topic] = append(subs, sub)
	q.subsLock.Unlock()
	if len(subs) == 0 {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, 0, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, 0, false, payload)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("mqtt connected")
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = 0
	}
	q.subsLock.RUnlock()
	if len(filters) > 0 {
		q.Client.SubscribeMultiple(filters, q.dispatch)
	}
}

func (q *Queue) onConnectionLost(c paho.Client, err error) {
	glog.Warningf("mqtt connection lost: %v", err)
}

func (q *Queue) handlers(topic string) (handlers []Handler) {
	q.subsLock.RLock()
	defer q.subsLock.RUnlock()
	for pattern, subs := range q.subs {
		if MatchTopic(topic, pattern) {
			for _, sub := range subs {
				handlers = append(handlers, sub.handler)
			}
		}
	}
	return
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	glog.V(4).Infof("RCV %q", topic)
	for _, h := range q.handlers(topic) {
		h(topic, msg.Payload())
	}
}

// Close unsubscribes the handler.
func (s *Subscription) Close() error {
	q := s.queue
	q.subsLock.Lock()
	subs := q.subs[s.topic]
	for i, sub := range subs {
		if sub == s {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(q.subs, s.topic)
	} else {
		q.subs[s.topic] = subs
	}
	q.subsLock.Unlock()
	if len(subs) > 0 {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.topic)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}
