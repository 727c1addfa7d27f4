package main

import (
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/robotalks/cec.go/pkg/cecnode"
	"github.com/robotalks/cec.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
	"github.com/robotalks/cec.go/pkg/trace"
)

var (
	mqttURL   = "mqtt://localhost:1883/cec/"
	traceFile string
)

func init() {
	if val := os.Getenv("CEC_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&traceFile, "trace", traceFile, "Replay a trace file instead of watching MQTT.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if traceFile != "" {
		if err := replay(traceFile); err != nil {
			log.Fatalln(err)
		}
		return
	}

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: #%d %s", topic, typed.Sequence, msgs.Describe(msg))
	}))
	<-(chan struct{})(nil)
}

func replay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rd, err := trace.NewReader(f)
	if err != nil {
		return err
	}
	log.Printf("session %s on %s, started %s", rd.Header.Session, rd.Header.Device, rd.Header.Started)
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		ev, err := rec.Event()
		if err != nil {
			log.Printf("%s: %v", rec.Time.Format("15:04:05.000000"), err)
			continue
		}
		log.Printf("%s: %s", rec.Time.Format("15:04:05.000000"), msgs.Describe(cecnode.EventMessage(ev)))
	}
}
