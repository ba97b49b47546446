package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractLyricsActivity)
	w.RegisterActivity(a.TransformLyricsActivity)
	w.RegisterActivity(a.LoadLyricsActivity)
	w.RegisterActivity(a.RecordRunActivity)
}
