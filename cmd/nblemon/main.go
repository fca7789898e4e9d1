package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/nble.go/pkg/bridge/mqtt"
	"github.com/robotalks/nble.go/pkg/rpc"
)

var (
	mqttURL = "mqtt://localhost:1883/nble/+/"
)

func init() {
	if val := os.Getenv("NBLE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	// the prefix may contain wildcards, so subscribe everything and match
	// the full topic.
	prefix := q.TopicPrefix
	q.TopicPrefix = ""
	q.Sub(prefix+"#", mqtt.Handler(func(topic string, payload []byte) {
		id, body, err := rpc.Decode(payload)
		if err != nil {
			log.Printf("%s: %x", topic, payload)
			return
		}
		log.Printf("%s: %d %x", topic, id, body)
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
