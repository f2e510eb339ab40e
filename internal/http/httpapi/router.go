package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adclip/internal/http/handlers"
	"adclip/internal/middleware"
	"adclip/web"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS)

	r.Get("/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/script", app.Script)
		r.Post("/tts", app.TTS)
		r.Route("/runway", func(r chi.Router) {
			r.Post("/text_to_image", app.TextToImage)
			r.Post("/image_to_video", app.ImageToVideo)
			r.Get("/task", app.TaskStatus)
		})
	})

	r.Handle("/*", web.Handler())

	return r
}
