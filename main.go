package main

import (
	"fmt"

	bookingx "github.com/tsukimori/yoyaku-agent/agent/booking"
	"github.com/tsukimori/yoyaku-agent/agent/booking/tabelog"
	"github.com/tsukimori/yoyaku-agent/agent/booking/toreta"
	browserx "github.com/tsukimori/yoyaku-agent/agent/browser"
	extractx "github.com/tsukimori/yoyaku-agent/agent/extract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
	configx "github.com/tsukimori/yoyaku-agent/pkg/config"
	_ "github.com/tsukimori/yoyaku-agent/pkg/logger/autoload"
	openaix "github.com/tsukimori/yoyaku-agent/pkg/openaix"

	"github.com/tsukimori/yoyaku-agent/agent/agents/reservation"
)

func main() {
	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	completer, err := openaix.NewCompleter(*openaiCfg)
	if err != nil {
		panic(err)
	}

	browserCfg := configx.MustNew[browserx.Config]("BROWSER")
	launcher := browserx.NewChromeLauncher(*browserCfg)

	dispatcher := bookingx.NewDispatcher(
		tabelog.New(launcher),
		toreta.New(launcher),
	)

	agent, err := reservation.New(
		statex.NewSessionStore(),
		extractx.NewDatetimeExtractor(completer),
		dispatcher,
	)
	if err != nil {
		panic(err)
	}
	_ = agent

	fmt.Println("Reservation agent ready")
}
