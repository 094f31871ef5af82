package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/stagepass/portal/config"
	"github.com/stagepass/portal/internal/adapters/authroles"
	"github.com/stagepass/portal/internal/adapters/devauth"
	redisadapter "github.com/stagepass/portal/internal/adapters/redis"
	"github.com/stagepass/portal/internal/adapters/restapi"
	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/observability/statsd"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/service"
)

// ServiceContainer holds the portal's services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Billing   *service.BillingService
	Resources *service.ResourceService
	Contact   *service.ContactService
	// Metrics is nil-safe; a nil client drops everything.
	Metrics *statsd.Client
}

// ServiceDeps contains dependencies for service creation.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// HTTPClient overrides the API client's transport.
	HTTPClient *http.Client
}

// NewServices wires the REST client, Redis adapters and services together.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, errors.New("config is required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required for sessions")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := buildMetrics(logger, cfg.Observability)

	api, err := restapi.NewClient(restapi.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		HTTPClient: deps.HTTPClient,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create api client: %w", err)
	}

	backendAuth, err := buildBackendAuth(cfg.Auth, api, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	guard := buildGuard(cfg.Redis, deps.RedisClient, logger)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Deps: service.AuthDeps{
			Backend:  backendAuth,
			Sessions: redisadapter.NewSessionStore(deps.RedisClient),
			Roles:    buildRoleMapper(cfg.Auth.RoleAliases, logger),
		},
		Config: service.AuthConfig{
			Lifetime:        cfg.Auth.SessionLifetime,
			RefreshInterval: cfg.Auth.SessionRefreshInterval,
		},
		Logger: logger,
	})
	billingSvc := service.NewBillingService(service.BillingServiceOptions{
		Gateway: api,
		Guard:   guard,
		Metrics: metrics,
	})
	resourceSvc := service.NewResourceService(service.ResourceServiceOptions{
		Backends:     service.ResourceBackends{Client: api, Profiles: api},
		Capabilities: billingSvc,
		Guard:        guard,
	})

	return ServiceContainer{
		Auth:      authSvc,
		Billing:   billingSvc,
		Resources: resourceSvc,
		Contact:   service.NewContactService(api),
		Metrics:   metrics,
	}, nil
}

func buildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// buildBackendAuth picks the sign-in backend for the configured mode.
//
//nolint:ireturn // the mode decides the concrete provider.
func buildBackendAuth(cfg config.AuthConfig, api *restapi.Client, logger *slog.Logger) (ports.BackendAuth, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Username: cfg.DevAuth.Username,
			Role:     cfg.DevAuth.Role,
			Plan:     cfg.DevAuth.Plan,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		logger.Warn("AUTH_MODE=mock: any email and password signs in", "role", cfg.DevAuth.Role)
		return prov, nil
	case config.AuthModeBackend, "":
		return api, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// buildGuard returns the Redis lock, or a process-local guard when configured.
//
//nolint:ireturn // the deployment decides the guard.
func buildGuard(cfg config.RedisConfig, client redis.UniversalClient, logger *slog.Logger) ports.InflightGuard {
	if cfg.LocalInflight || client == nil {
		logger.Info("using process-local in-flight guard")
		return service.NewLocalInflight()
	}
	return redisadapter.NewInflightLock(client, cfg.LockTTL)
}

func buildRoleMapper(aliases map[string]string, logger *slog.Logger) authroles.UserTypeMapper {
	m := authroles.UserTypeMapper{Aliases: make(map[string]domainauth.Role, len(aliases))}
	for userType, roleName := range aliases {
		role, ok := domainauth.ParseRole(roleName)
		if !ok {
			logger.Warn("ignoring role alias with unknown role", "user_type", userType, "role", roleName)
			continue
		}
		m.Aliases[strings.ToLower(strings.TrimSpace(userType))] = role
	}
	return m
}
