package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/nble.go/pkg/env"
	"github.com/robotalks/nble.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := env.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	if conf.MQTTURL == "" {
		log.Fatalln("-mqtt is required")
	}
	e := conf.MustNewEnv()
	runner := framework.NewRunner().HandleSignals()
	if err := e.Start(runner); err != nil {
		log.Fatalln(err)
	}
	glog.Infof("bridging %s to %s%s", conf.Port.Device, e.Bridge.Queue.TopicPrefix, e.Bridge.RxTopic)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
