// Package testserver starts a fully wired HTTP server over an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/mcp"
	"github.com/kcalabs/kca-projects/internal/sqlite"
	"github.com/kcalabs/kca-projects/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Projects *project.Service
	Keys     *sqlite.APIKeyRepository
	Token    string
	Actor    string

	router routerSwap
}

// routerSwap lets Restart replace the router while the server keeps running.
type routerSwap struct {
	mu sync.RWMutex
	h  http.Handler
}

func (r *routerSwap) set(h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = h
}

func (r *routerSwap) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.h
	r.mu.RUnlock()
	h.ServeHTTP(w, req)
}

// New starts a server whose /rpc, /backup and /mcp routes accept token as
// actor. The collection is seeded on start like a fresh install.
func New(t *testing.T, token, actor string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{
		DB:    db,
		Keys:  sqlite.NewAPIKeyRepository(db),
		Token: token,
		Actor: actor,
	}
	router, err := ts.wire(t)
	require.NoError(t, err)
	ts.router.set(router)
	ts.Server = httptest.NewServer(&ts.router)

	require.NoError(t, ts.AddAPIKey(token, actor))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	return ts
}

// Restart rebuilds the services over the same database, as a process restart
// would, and returns the error from loading the collection. The server keeps
// serving whatever was loaded, even after a failure.
func (ts *TestServer) Restart(t *testing.T) error {
	t.Helper()
	router, err := ts.wire(t)
	ts.router.set(router)
	return err
}

func (ts *TestServer) wire(t *testing.T) (http.Handler, error) {
	store := sqlite.NewProjectStore(sqlite.NewKVStore(ts.DB))
	activityRepo := sqlite.NewActivityRepository(ts.DB)

	projectSvc := project.NewService(store, activityRepo, nil)
	loadErr := projectSvc.Load(context.Background())
	activitySvc := activity.NewService(activityRepo, nil)
	ts.Projects = projectSvc

	resolver := transport.APIKeyResolver{Keys: ts.Keys}
	backupDir := t.TempDir()

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Projects: projectSvc, Activity: activitySvc},
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
		BackupDir:     backupDir,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	router := transport.NewServer(transport.Options{
		Handler:    mcp.NewHandler(projectSvc, activitySvc, backupDir),
		Collection: projectSvc,
		Auth:       transport.AuthMiddleware(resolver),
		MCP:        mcpHandler,
	})
	return router, loadErr
}

func (ts *TestServer) AddAPIKey(token, actor string) error {
	return ts.Keys.Add(context.Background(), transport.HashToken(token), actor, "test key")
}
