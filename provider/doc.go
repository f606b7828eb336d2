// Package provider holds the registry used to pick a collaborator backend
// (speech-to-text, diarizer, classifier) by name at startup.
//
// # Usage
//
//	reg := provider.NewRegistry[transcription.Provider, transcription.Config]()
//	reg.RegisterFactory("openai", openai.NewFromConfig)
//	p, err := reg.Resolve(cfg.Backend, cfg)
package provider
