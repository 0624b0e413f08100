package main

import (
	"log"

	"LinguaReel-server/config"
	"LinguaReel-server/models"
	"LinguaReel-server/pipeline"
	"LinguaReel-server/providers"
	"LinguaReel-server/routers"
	"LinguaReel-server/service"
)

func main() {
	config.InitConfig()
	cfg := config.AppConfig
	log.Printf("server starting on port %s", cfg.Server.Port)

	models.InitDB()
	service.InitQueue()
	storage := service.InitMinIO()

	p := pipeline.New(pipeline.Deps{
		Store:   models.NewStore(models.DB),
		Objects: storage,
		TTS:     providers.NewElevenLabs(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.ModelID),
		LLM:     providers.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Images:  providers.NewReplicate(cfg.Replicate.APIToken, cfg.Replicate.Model),
		Host:    providers.NewMux(cfg.Mux.TokenID, cfg.Mux.TokenSecret, cfg.PollInterval(), cfg.Pipeline.PollMaxAttempts),
		Runner:  providers.ExecRunner{},
		Prober:  providers.FFProbe{},
		Fetcher: providers.NewHTTPFetcher(),
		Gate:    pipeline.NewGate(cfg.Pipeline.GateCapacity),
	}, pipeline.Options{
		PollInterval:      cfg.PollInterval(),
		PollMaxAttempts:   cfg.Pipeline.PollMaxAttempts,
		RenderParallelism: cfg.Pipeline.RenderParallelism,
		ScratchDir:        cfg.Pipeline.ScratchDir,
	})

	processor := service.NewProcessor(models.DB, p)
	processor.StartProcessor(cfg.Worker.Concurrency)

	r := routers.InitRouter()
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
