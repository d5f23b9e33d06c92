// Package resolver maps HTTP request paths to resource names and opens those
// names as virtual files backed by the caches, the fixed status aliases or
// the embedded static assets.
package resolver

import (
	"strings"

	"github.com/rs/zerolog"

	"zulubridge/internal/cache"
	"zulubridge/internal/controllink"
)

// Document is a source of an immutable JSON document.
type Document interface {
	Document() []byte
}

// Config wires a Resolver to its collaborators.
type Config struct {
	Requester controllink.Requester
	Filenames *cache.Filenames
	Images    *cache.Images
	Status    Document
	Version   Document
	Logger    zerolog.Logger
}

// Resolver implements the HTTP decision table. It is safe for concurrent use
// by HTTP handlers; all cache transitions it makes are compare-and-swap.
type Resolver struct {
	req       controllink.Requester
	filenames *cache.Filenames
	images    *cache.Images
	status    Document
	version   Document
	log       zerolog.Logger
}

func New(cfg Config) *Resolver {
	return &Resolver{
		req:       cfg.Requester,
		filenames: cfg.Filenames,
		images:    cfg.Images,
		status:    cfg.Status,
		version:   cfg.Version,
		log:       cfg.Logger,
	}
}

// Resolve returns the resource name for path, or "" when path is unknown.
// params holds the decoded query parameters. Resolving may issue control-link
// requests and move cache state.
func (r *Resolver) Resolve(path string, params map[string]string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	name := r.resolve(path, params)
	resolvedTotal.WithLabelValues(routeLabel(path), name).Inc()
	return name
}

func (r *Resolver) resolve(path string, params map[string]string) string {
	switch path {
	case "/", NameIndex:
		return NameIndex
	case NameControlJS, NameStyleCSS:
		return path
	case "/version", NameVersion:
		return NameVersion
	case "/status", NameStatus:
		return NameStatus
	case "/filenames":
		return r.resolveFilenames()
	case "/images":
		return r.resolveImages()
	case "/nextImage":
		return r.resolveNextImage()
	case "/image":
		return r.resolveLoad(params)
	case "/eject":
		r.enqueue(controllink.KindEjectImage, nil)
		return NameOK
	default:
		return ""
	}
}

func (r *Resolver) enqueue(kind controllink.Kind, payload []byte) bool {
	if r.req.EnqueueRequest(kind, payload) {
		return true
	}
	r.log.Warn().Str("kind", kind.String()).Msg("failed to add request to output queue")
	return false
}

func (r *Resolver) resolveFilenames() string {
	switch r.filenames.State() {
	case cache.FilenamesIdle:
		r.fetchFilenames()
		return NameWait
	case cache.FilenamesCollecting:
		return NameWait
	case cache.FilenamesOverflow:
		return NameOverflow
	default:
		// serve what we have and refresh it for the next cycle
		r.fetchFilenames()
		return NameFilenames
	}
}

// fetchFilenames asks for the list unless a fetch is still unanswered.
func (r *Resolver) fetchFilenames() {
	if !r.filenames.MarkRequested() {
		return
	}
	if !r.enqueue(controllink.KindFetchFilenames, nil) {
		r.filenames.ClearRequested()
	}
}

func (r *Resolver) resolveImages() string {
	im := r.images
	switch im.State() {
	case cache.ImagesIdle:
		if im.StartBulk() && !r.enqueue(controllink.KindFetchImages, nil) {
			im.AbortBulk()
		}
		return NameWait
	case cache.ImagesBulkReady:
		return NameImages
	default:
		return NameWait
	}
}

func (r *Resolver) resolveNextImage() string {
	im := r.images
	st := im.State()
	// a waiting image is served before exhaustion is reported; the
	// follow-up request is issued by Open once the slot is free again
	if (st == cache.ImagesIterating || st == cache.ImagesIterationExhausted) && im.HasNext() {
		return NameNextImage
	}
	switch st {
	case cache.ImagesIdle:
		if im.StartIteration() && !r.requestNext() {
			im.AbortIteration()
		}
		return NameWait
	case cache.ImagesIterating:
		if r.requestNext() && im.HasNext() {
			// the answer landed after the check above
			return NameNextImage
		}
		return NameWait
	case cache.ImagesIterationExhausted:
		if im.FinishIteration() {
			return NameDone
		}
		return NameWait
	case cache.ImagesBulkCollecting:
		return NameWait
	default:
		return NameError
	}
}

// requestNext asks the peer for the next image unless a request is already
// in flight or an image is waiting. It reports false only when the enqueue
// failed.
func (r *Resolver) requestNext() bool {
	im := r.images
	if !im.ClaimRequest() {
		return true
	}
	if im.HasNext() {
		im.ReleaseRequest()
		return true
	}
	if r.enqueue(controllink.KindFetchNextImage, nil) {
		return true
	}
	im.ReleaseRequest()
	return false
}

func (r *Resolver) resolveLoad(params map[string]string) string {
	name, ok := params["imageName"]
	if !ok || name == "" {
		return NameError
	}
	r.log.Info().Str("image", name).Msg("setting image")
	r.enqueue(controllink.KindLoadImage, []byte(name))
	return NameOK
}

// Open opens a resolved resource name.
func (r *Resolver) Open(name string) (*File, bool) {
	if b, ok := aliases[name]; ok {
		return newFile(name, b), true
	}
	if b, ok := assets[name]; ok {
		return newFile(name, b), true
	}
	switch name {
	case NameVersion:
		return newFile(name, r.version.Document()), true
	case NameStatus:
		return newFile(name, r.status.Document()), true
	case NameFilenames:
		if b, ok := r.filenames.Last(); ok {
			return newFile(name, b), true
		}
	case NameImages:
		if b, ok := r.images.Document(); ok {
			return newFile(name, b), true
		}
	case NameNextImage:
		frag := r.images.TakeNext()
		if frag == nil {
			// another request took the image between Resolve and Open
			return newFile(NameWait, aliases[NameWait]), true
		}
		if r.images.State() == cache.ImagesIterating {
			r.requestNext()
		}
		f := newFile(name, frag.Bytes())
		f.frag = frag
		return f, true
	}
	return nil, false
}

func routeLabel(path string) string {
	switch path {
	case "/", NameIndex, NameControlJS, NameStyleCSS:
		return "asset"
	case "/version", NameVersion, "/status", NameStatus, "/filenames", "/images", "/nextImage", "/image", "/eject":
		return strings.TrimSuffix(path, ".json")
	default:
		return "other"
	}
}
