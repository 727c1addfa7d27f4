package main

import (
	"context"
	"flag"
	"log"

	"github.com/robotalks/cec.go/pkg/cecnode"
	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	env "github.com/robotalks/cec.go/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType("cec", l1.ControllerMeta{Description: "HDMI-CEC Controller"})
	env.SetupFlags()
	cecnode.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl, err := cecnode.NewConfig().NewController(env.Registrar)
	if err != nil {
		log.Fatalln(err)
	}
	loop := fx.NewLoop().Add(env, ctl)
	err = fx.NewRunner().HandleSignals().Go(loop).Wait()
	if err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}
