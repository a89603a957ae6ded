package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/matcher"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/report"
	"github.com/edwinlov3tt/report-ai-sub000/internal/resolver"
	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// SchemaHandler serves the configuration store. The same routes are reachable
// as REST paths and through the legacy ?path= entry point.
type SchemaHandler struct {
	logger   *observability.Logger
	schema   *schema.Service
	settings *settings.Service
	resolver *resolver.Resolver
	pipeline *report.Pipeline
	tables   report.TableSource
	routes   chi.Router
}

// SchemaDeps are the services behind the schema routes. Schema and Settings
// are nil without a database; only resolve and match work then.
type SchemaDeps struct {
	Schema   *schema.Service
	Settings *settings.Service
	Resolver *resolver.Resolver
	Pipeline *report.Pipeline
	Tables   report.TableSource
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(logger *observability.Logger, deps SchemaDeps) *SchemaHandler {
	h := &SchemaHandler{
		logger:   logger,
		schema:   deps.Schema,
		settings: deps.Settings,
		resolver: deps.Resolver,
		pipeline: deps.Pipeline,
		tables:   deps.Tables,
	}
	h.routes = h.buildRoutes()
	return h
}

// Routes returns the REST router, to be mounted under a prefix.
func (h *SchemaHandler) Routes() http.Handler {
	return h.routes
}

// Legacy handles /schema-crud.php?path=... by routing path through the same
// router. A query string embedded in path is merged into the request query.
func (h *SchemaHandler) Legacy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path := strings.Trim(query.Get("path"), "/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required", "")
		return
	}
	query.Del("path")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		extra, err := url.ParseQuery(path[i+1:])
		if err == nil {
			for k, vs := range extra {
				for _, v := range vs {
					query.Add(k, v)
				}
			}
		}
		path = path[:i]
	}

	r2 := r.Clone(r.Context())
	r2.URL.Path = "/" + path
	r2.URL.RawPath = ""
	r2.URL.RawQuery = query.Encode()
	rctx := chi.NewRouteContext()
	r2 = r2.WithContext(context.WithValue(r2.Context(), chi.RouteCtxKey, rctx))

	h.routes.ServeHTTP(w, r2)
}

func (h *SchemaHandler) buildRoutes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unknown schema path", strings.TrimPrefix(r.URL.Path, "/"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", r.Method)
	})

	r.Get("/resolve", h.resolve)
	r.Post("/match", h.match)

	r.Group(func(r chi.Router) {
		r.Use(h.requireStore)

		r.Get("/tree", h.tree)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getProduct)
				r.Put("/", h.updateProduct)
				r.Delete("/", h.deleteProduct)
				r.Get("/subproducts", h.listSubproducts)
				r.Post("/subproducts", h.createSubproduct)
				r.Get("/extractors", h.listExtractors)
				r.Post("/extractors", h.createExtractor)
				r.Get("/benchmarks", h.listBenchmarks)
				r.Post("/benchmarks", h.createBenchmark)
				h.overrideRoutes(r, storage.ScopeProduct)
			})
		})

		r.Route("/subproducts/{id}", func(r chi.Router) {
			r.Get("/", h.getSubproduct)
			r.Put("/", h.updateSubproduct)
			r.Delete("/", h.deleteSubproduct)
			r.Get("/tactic-types", h.listTacticTypes)
			r.Post("/tactic-types", h.createTacticType)
			h.overrideRoutes(r, storage.ScopeSubproduct)
		})

		r.Route("/tactic-types/{id}", func(r chi.Router) {
			r.Get("/", h.getTacticType)
			r.Put("/", h.updateTacticType)
			r.Delete("/", h.deleteTacticType)
		})

		r.Route("/extractors/{id}", func(r chi.Router) {
			r.Get("/", h.getExtractor)
			r.Put("/", h.updateExtractor)
			r.Delete("/", h.deleteExtractor)
		})

		r.Route("/benchmarks/{id}", func(r chi.Router) {
			r.Get("/", h.getBenchmark)
			r.Put("/", h.updateBenchmark)
			r.Delete("/", h.deleteBenchmark)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.listSettings)
			r.Post("/", h.upsertSetting)
			r.Put("/", h.upsertSetting)
			r.Get("/{key}", h.getSetting)
			r.Put("/{key}", h.upsertSetting)
			r.Delete("/{key}", h.deleteSetting)
		})

		r.Route("/test-configs", func(r chi.Router) {
			r.Get("/", h.listTestConfigs)
			r.Post("/", h.createTestConfig)
			r.Get("/{id}", h.getTestConfig)
			r.Put("/{id}", h.updateTestConfig)
			r.Delete("/{id}", h.deleteTestConfig)
			r.Post("/{id}/run", h.runTestConfig)
		})

		r.Get("/export", h.export)
		r.Post("/import", h.importSnapshot)

		r.Route("/versions", func(r chi.Router) {
			r.Get("/", h.listVersions)
			r.Post("/", h.saveVersion)
			r.Get("/{id}", h.getVersion)
			r.Post("/{id}/restore", h.restoreVersion)
		})
	})

	return r
}

func (h *SchemaHandler) overrideRoutes(r chi.Router, scope storage.OverrideScope) {
	r.Get("/section-overrides", h.listOverrides(scope))
	r.Post("/section-overrides", h.upsertOverride(scope))
	r.Put("/section-overrides/{sectionId}", h.upsertOverride(scope))
	r.Delete("/section-overrides/{sectionId}", h.deleteOverride(scope))
}

func (h *SchemaHandler) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.schema == nil || h.settings == nil {
			writeDomainError(w, h.logger, domain.ConfigurationError("the configuration store requires a database", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *SchemaHandler) respond(w http.ResponseWriter, status int, v interface{}, err error) {
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, status, v)
}

func (h *SchemaHandler) deleted(w http.ResponseWriter, err error) {
	h.respond(w, http.StatusOK, map[string]bool{"success": true}, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError(name+" must be a positive integer", nil)
	}
	return id, nil
}

// Products

func (h *SchemaHandler) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.schema.Tree(r.Context())
	h.respond(w, http.StatusOK, tree, err)
}

func (h *SchemaHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.schema.ListProducts(r.Context())
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	p, err := h.schema.GetProduct(r.Context(), id)
	h.respond(w, http.StatusOK, p, err)
}

func (h *SchemaHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p storage.Product
	if err := decodeBody(r, &p); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	p.ID = 0
	h.respond(w, http.StatusCreated, &p, h.schema.CreateProduct(r.Context(), &p))
}

func (h *SchemaHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var p storage.Product
	if err := decodeBody(r, &p); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	p.ID = id
	h.respond(w, http.StatusOK, &p, h.schema.UpdateProduct(r.Context(), &p))
}

func (h *SchemaHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteProduct(r.Context(), id))
}

// Subproducts

func (h *SchemaHandler) listSubproducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	out, err := h.schema.ListSubproducts(r.Context(), id)
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getSubproduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	sp, err := h.schema.GetSubproduct(r.Context(), id)
	h.respond(w, http.StatusOK, sp, err)
}

func (h *SchemaHandler) createSubproduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var sp storage.Subproduct
	if err := decodeBody(r, &sp); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	sp.ID, sp.ProductID = 0, productID
	h.respond(w, http.StatusCreated, &sp, h.schema.CreateSubproduct(r.Context(), &sp))
}

func (h *SchemaHandler) updateSubproduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var sp storage.Subproduct
	if err := decodeBody(r, &sp); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	sp.ID = id
	h.respond(w, http.StatusOK, &sp, h.schema.UpdateSubproduct(r.Context(), &sp))
}

func (h *SchemaHandler) deleteSubproduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteSubproduct(r.Context(), id))
}

// Tactic types

func (h *SchemaHandler) listTacticTypes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	out, err := h.schema.ListTacticTypes(r.Context(), id)
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getTacticType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	t, err := h.schema.GetTacticType(r.Context(), id)
	h.respond(w, http.StatusOK, t, err)
}

func (h *SchemaHandler) createTacticType(w http.ResponseWriter, r *http.Request) {
	subproductID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var t storage.TacticType
	if err := decodeBody(r, &t); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	t.ID, t.SubproductID = 0, subproductID
	h.respond(w, http.StatusCreated, &t, h.schema.CreateTacticType(r.Context(), &t))
}

func (h *SchemaHandler) updateTacticType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var t storage.TacticType
	if err := decodeBody(r, &t); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	t.ID = id
	h.respond(w, http.StatusOK, &t, h.schema.UpdateTacticType(r.Context(), &t))
}

func (h *SchemaHandler) deleteTacticType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteTacticType(r.Context(), id))
}

// Extractors

func (h *SchemaHandler) listExtractors(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	out, err := h.schema.ListExtractors(r.Context(), id)
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getExtractor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	e, err := h.schema.GetExtractor(r.Context(), id)
	h.respond(w, http.StatusOK, e, err)
}

func (h *SchemaHandler) createExtractor(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var e storage.LuminaExtractor
	if err := decodeBody(r, &e); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	e.ID, e.ProductID = 0, productID
	h.respond(w, http.StatusCreated, &e, h.schema.CreateExtractor(r.Context(), &e))
}

func (h *SchemaHandler) updateExtractor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var e storage.LuminaExtractor
	if err := decodeBody(r, &e); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	e.ID = id
	h.respond(w, http.StatusOK, &e, h.schema.UpdateExtractor(r.Context(), &e))
}

func (h *SchemaHandler) deleteExtractor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteExtractor(r.Context(), id))
}

// Benchmarks

func (h *SchemaHandler) listBenchmarks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	out, err := h.schema.ListBenchmarks(r.Context(), id)
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	b, err := h.schema.GetBenchmark(r.Context(), id)
	h.respond(w, http.StatusOK, b, err)
}

func (h *SchemaHandler) createBenchmark(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var b storage.Benchmark
	if err := decodeBody(r, &b); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	b.ID, b.ProductID = 0, productID
	h.respond(w, http.StatusCreated, &b, h.schema.CreateBenchmark(r.Context(), &b))
}

func (h *SchemaHandler) updateBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var b storage.Benchmark
	if err := decodeBody(r, &b); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	b.ID = id
	h.respond(w, http.StatusOK, &b, h.schema.UpdateBenchmark(r.Context(), &b))
}

func (h *SchemaHandler) deleteBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteBenchmark(r.Context(), id))
}

// Section overrides

func (h *SchemaHandler) listOverrides(scope storage.OverrideScope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := pathID(r, "id")
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		out, err := h.schema.ListOverrides(r.Context(), scope, ownerID)
		h.respond(w, http.StatusOK, out, err)
	}
}

func (h *SchemaHandler) upsertOverride(scope storage.OverrideScope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := pathID(r, "id")
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		var o storage.SectionOverride
		if err := decodeBody(r, &o); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		if chi.URLParam(r, "sectionId") != "" {
			sectionID, err := pathID(r, "sectionId")
			if err != nil {
				writeDomainError(w, h.logger, err)
				return
			}
			o.SectionID = sectionID
		}
		if o.SectionID <= 0 {
			writeDomainError(w, h.logger, domain.ValidationError("section_id is required", nil))
			return
		}
		o.ID, o.OwnerID = 0, ownerID
		h.respond(w, http.StatusOK, &o, h.schema.UpsertOverride(r.Context(), scope, &o))
	}
}

func (h *SchemaHandler) deleteOverride(scope storage.OverrideScope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := pathID(r, "id")
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		sectionID, err := pathID(r, "sectionId")
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		h.deleted(w, h.schema.DeleteOverride(r.Context(), scope, ownerID, sectionID))
	}
}

// Settings

func (h *SchemaHandler) listSettings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grouped") == "true" {
		g, err := h.settings.Grouped(r.Context())
		h.respond(w, http.StatusOK, g, err)
		return
	}
	out, err := h.settings.List(r.Context())
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getSetting(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context(), chi.URLParam(r, "key"))
	h.respond(w, http.StatusOK, s, err)
}

func (h *SchemaHandler) upsertSetting(w http.ResponseWriter, r *http.Request) {
	var s storage.AIGlobalSetting
	if err := decodeBody(r, &s); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if key := chi.URLParam(r, "key"); key != "" {
		s.SettingKey = key
	}
	h.respond(w, http.StatusOK, &s, h.settings.Upsert(r.Context(), &s))
}

func (h *SchemaHandler) deleteSetting(w http.ResponseWriter, r *http.Request) {
	h.deleted(w, h.settings.Delete(r.Context(), chi.URLParam(r, "key")))
}

// Test configs

func (h *SchemaHandler) listTestConfigs(w http.ResponseWriter, r *http.Request) {
	out, err := h.schema.ListTestConfigs(r.Context())
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getTestConfig(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	c, err := h.schema.GetTestConfig(r.Context(), id)
	h.respond(w, http.StatusOK, c, err)
}

func (h *SchemaHandler) createTestConfig(w http.ResponseWriter, r *http.Request) {
	var c storage.AITestConfig
	if err := decodeBody(r, &c); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	c.ID = 0
	h.respond(w, http.StatusCreated, &c, h.schema.CreateTestConfig(r.Context(), &c))
}

func (h *SchemaHandler) updateTestConfig(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	var c storage.AITestConfig
	if err := decodeBody(r, &c); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	c.ID = id
	h.respond(w, http.StatusOK, &c, h.schema.UpdateTestConfig(r.Context(), &c))
}

func (h *SchemaHandler) deleteTestConfig(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.deleted(w, h.schema.DeleteTestConfig(r.Context(), id))
}

func (h *SchemaHandler) runTestConfig(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	result, err := h.pipeline.RunTestConfig(r.Context(), h.schema, id)
	h.respond(w, http.StatusOK, result, err)
}

// Resolution and matching

func (h *SchemaHandler) resolve(w http.ResponseWriter, r *http.Request) {
	productID, err := optionalQueryID(r, "productId")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	subproductID, err := optionalQueryID(r, "subproductId")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	cfg, err := h.resolver.Resolve(r.Context(), productID, subproductID)
	h.respond(w, http.StatusOK, cfg, err)
}

func optionalQueryID(r *http.Request, name string) (*int64, error) {
	id, ok, err := queryID(r, name)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

// MatchRequestDTO is the body of POST match.
type MatchRequestDTO struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
}

// MatchResponseDTO lists filename and header matches, best first.
type MatchResponseDTO struct {
	FilenameMatches []matcher.FilenameMatch `json:"filenameMatches"`
	HeaderMatches   []matcher.HeaderMatch   `json:"headerMatches"`
}

func (h *SchemaHandler) match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequestDTO
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if req.Filename == "" && len(req.Headers) == 0 {
		writeDomainError(w, h.logger, domain.ValidationError("filename or headers is required", nil))
		return
	}

	var products []matcher.ProductTables
	if h.tables != nil {
		var err error
		if products, err = h.tables(r.Context()); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
	}

	resp := MatchResponseDTO{
		FilenameMatches: []matcher.FilenameMatch{},
		HeaderMatches:   []matcher.HeaderMatch{},
	}
	if req.Filename != "" {
		if m := matcher.MatchFilename(req.Filename, products); m != nil {
			resp.FilenameMatches = m
		}
	}
	if len(req.Headers) > 0 {
		if m := matcher.MatchHeaders(req.Headers, products); m != nil {
			resp.HeaderMatches = m
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export, import and versions

func (h *SchemaHandler) export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.schema.ExportSnapshot(r.Context())
	h.respond(w, http.StatusOK, snap, err)
}

func (h *SchemaHandler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeDomainError(w, h.logger, domain.ValidationError("failed to read request body", err))
		return
	}
	snap, err := schema.ParseSnapshot(data)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	clearExisting := r.URL.Query().Get("clear") == "true"
	result, err := h.schema.ImportSnapshot(r.Context(), snap, clearExisting)
	h.respond(w, http.StatusOK, result, err)
}

// SaveVersionRequestDTO is the body of POST versions.
type SaveVersionRequestDTO struct {
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

func (h *SchemaHandler) listVersions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDomainError(w, h.logger, domain.ValidationError("limit must be a positive integer", nil))
			return
		}
		limit = n
	}
	out, err := h.schema.ListVersions(r.Context(), limit)
	h.respond(w, http.StatusOK, out, err)
}

func (h *SchemaHandler) getVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	v, err := h.schema.GetVersion(r.Context(), id)
	h.respond(w, http.StatusOK, v, err)
}

func (h *SchemaHandler) saveVersion(w http.ResponseWriter, r *http.Request) {
	var req SaveVersionRequestDTO
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = "api"
	}
	v, err := h.schema.SaveVersion(r.Context(), req.Description, req.CreatedBy)
	h.respond(w, http.StatusCreated, v, err)
}

func (h *SchemaHandler) restoreVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	result, err := h.schema.RestoreVersion(r.Context(), id)
	h.respond(w, http.StatusOK, result, err)
}
