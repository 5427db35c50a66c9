package recipe

import (
	"context"
	"fmt"
	"log/slog"
)

// PlaceholderImageURL is served when every image-generation attempt fails.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1556909114-f6e7ad7d3136?ixlib=rb-4.0.3&auto=format&fit=crop&w=1024&h=768"

const imagePromptTemplate = `Uma foto profissional e apetitosa de "%s", bem iluminada, com ingredientes frescos, estilo culinário brasileiro, fundo neutro, alta qualidade, adequada para blog de receitas`

// ImageGenerator is the slice of the AI registry the producer needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImageStore copies a remote image into durable storage and returns a
// stable public URL. *storage.S3 satisfies it.
type ImageStore interface {
	StoreFromURL(ctx context.Context, imageURL, name string) (string, error)
}

// ImageProducer turns a recipe title into an image URL. It never fails
// from the caller's perspective: storage-backed URL, then the provider's
// own short-lived URL, then a fixed placeholder.
type ImageProducer struct {
	ai    ImageGenerator
	store ImageStore // optional; nil skips the storage tier
	log   *slog.Logger
}

// NewImageProducer creates an ImageProducer. A nil store disables the
// storage tier and the raw provider URL is used directly.
func NewImageProducer(imageGen ImageGenerator, store ImageStore, log *slog.Logger) *ImageProducer {
	if log == nil {
		log = slog.Default()
	}
	return &ImageProducer{ai: imageGen, store: store, log: log}
}

// Produce returns a usable image URL for the recipe title. Every failure
// is absorbed and logged; the worst case is the placeholder.
func (p *ImageProducer) Produce(ctx context.Context, title string) string {
	prompt := fmt.Sprintf(imagePromptTemplate, title)

	url, err := p.ai.GenerateImage(ctx, prompt)
	if err == nil {
		if p.store == nil {
			return url
		}
		stable, storeErr := p.store.StoreFromURL(ctx, url, title)
		if storeErr == nil {
			return stable
		}
		p.log.Warn("image storage failed, using provider URL", "title", title, "error", storeErr)
		return url
	}

	p.log.Warn("image generation failed, retrying once", "title", title, "error", err)

	// Second bare attempt, skipping storage.
	url, err = p.ai.GenerateImage(ctx, prompt)
	if err == nil {
		return url
	}

	p.log.Warn("image generation failed twice, using placeholder", "title", title, "error", err)
	return PlaceholderImageURL
}
