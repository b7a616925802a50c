package billing

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/rechnung/internal/documents"
	"github.com/rezonia/rechnung/internal/engine"
	"github.com/rezonia/rechnung/internal/store"
	"github.com/rezonia/rechnung/internal/store/memory"
)

// Engine is the public invoice engine. It embeds the internal engine, so
// every lifecycle and computation operation is available on it directly.
type Engine = engine.Engine

// Store is the persistence contract consumed by the engine.
type Store = store.InvoiceStore

// Directory resolves customer and product references.
type Directory = store.DirectoryStore

// DocumentService renders and delivers invoice documents.
type DocumentService = store.DocumentService

// NewMemoryStore returns an in-memory store suitable for tests and
// single-process use. It satisfies both Store and Directory.
func NewMemoryStore() *memory.Store {
	return memory.NewStore()
}

// Options configures a public engine.
type Options struct {
	// Store and Directory default to a shared in-memory store.
	Store     Store
	Directory Directory

	// DocumentServiceURL points at the external renderer. When empty,
	// document actions fail with an upstream error.
	DocumentServiceURL     string
	DocumentServiceTimeout time.Duration

	// HeaderCompensation deletes the invoice header when any item write
	// fails during creation.
	HeaderCompensation bool

	Logger zerolog.Logger
}

// New creates an engine from the given options.
func New(opts Options) *Engine {
	if opts.Store == nil || opts.Directory == nil {
		mem := memory.NewStore()
		if opts.Store == nil {
			opts.Store = mem
		}
		if opts.Directory == nil {
			opts.Directory = mem
		}
	}

	var docs DocumentService
	if opts.DocumentServiceURL != "" {
		var clientOpts []documents.Option
		if opts.DocumentServiceTimeout > 0 {
			clientOpts = append(clientOpts, documents.WithTimeout(opts.DocumentServiceTimeout))
		}
		docs = documents.NewClient(opts.DocumentServiceURL, clientOpts...)
	} else {
		docs = documents.Unconfigured{}
	}

	engineOpts := []engine.Option{engine.WithLogger(opts.Logger)}
	if opts.HeaderCompensation {
		engineOpts = append(engineOpts, engine.WithHeaderCompensation())
	}
	return engine.New(opts.Store, opts.Directory, docs, engineOpts...)
}
