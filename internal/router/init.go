package router

import (
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"user-service/internal/application"
	"user-service/internal/bus"
	"user-service/internal/infrastructure/search"
	handlers "user-service/internal/interface/http"
	"user-service/internal/router/modules"
	"user-service/pkg/helpers"
)

// Deps carries everything the route modules need. Main constructs one Deps;
// nothing is pulled from package-level state.
type Deps struct {
	Bus          *bus.Bus
	Views        *application.Views
	Search       *search.Indexer
	GCS          *storage.Client
	GCSBucket    string
	RDB          *redis.Client
	JWT          *helpers.JWTManager
	Logger       *logrus.Logger
	CookieDomain string
	CookieSecure bool
}

// InitModules wires the feature modules onto the registry.
func InitModules(r *Registry, d Deps) {
	authH := handlers.NewAuthHandler(d.Bus, d.RDB, d.JWT, d.Logger, d.CookieDomain, d.CookieSecure)
	userH := handlers.NewUserHandler(d.Bus, d.Views, d.Search, d.GCS, d.GCSBucket, d.Logger)
	friendH := handlers.NewFriendHandler(d.Bus, d.Views, d.Logger)

	r.Add(modules.NewAuthModule(authH, d.RDB, d.JWT))
	r.Add(modules.NewUserModule(userH, d.RDB, d.JWT))
	r.Add(modules.NewFriendModule(friendH, d.RDB, d.JWT))
}
