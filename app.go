package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm/logger"

	"webforge/internal/bundler"
	"webforge/internal/config"
	"webforge/internal/database"
	"webforge/internal/events"
	"webforge/internal/genservice"
	"webforge/internal/models"
	"webforge/internal/services"
)

// App wires the database, the generation-service client and the domain
// services, and owns one ProjectSession per open project.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	svc     *services.DbServices
	keyring *services.KeyringService
	dbClose func() error

	sessionMu sync.Mutex
	sessions  map[uint]*services.ProjectSession
	autofix   map[uint]*services.AutoFixService
}

func NewApp() *App {
	return &App{
		sessions: make(map[uint]*services.ProjectSession),
		autofix:  make(map[uint]*services.AutoFixService),
	}
}

// startup opens the database and wires services. The context is saved so
// long-running calls can be torn down on shutdown.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = database.GetDefaultDBPath()
	}
	db, err := database.Init(database.Config{
		Path:     dbPath,
		LogLevel: logger.Warn,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err != nil {
		log.Printf("failed to get sql.DB: %v", err)
	} else {
		a.dbClose = sqlDB.Close
	}

	a.keyring = services.NewKeyringService()
	token, err := a.keyring.GetToken()
	if err != nil {
		log.Printf("no generation-service token in keyring: %v", err)
	}
	client := genservice.NewClient(genservice.Config{
		BaseURL: cfg.ServiceBaseURL,
		APIKey:  token,
		Timeout: cfg.HTTPTimeout,
	})

	a.svc = services.NewDbServices(db, client, services.PollPolicy{
		Interval: cfg.PollInterval,
		Backoff:  cfg.PollBackoff,
		MaxWait:  cfg.PollMaxWait,
		Timeout:  cfg.JobTimeout,
	}, cfg.PublishDir)
	a.svc.Projects.Startup(ctx)
	a.svc.Builder.Startup(ctx)
	a.svc.Snapshots.Startup(ctx)
	a.svc.Publisher.Startup(ctx)
	a.svc.Uploads.Startup(ctx)

	events.EnableLogEmitter()
	return nil
}

// shutdown tears down poll loops, auto-fix timers and the database pool.
func (a *App) shutdown() {
	a.sessionMu.Lock()
	for _, fix := range a.autofix {
		fix.Shutdown()
	}
	a.sessionMu.Unlock()

	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
		a.dbClose = nil
	}
}

// session returns the open session for projectID, loading it on first use.
func (a *App) session(projectID uint) (*services.ProjectSession, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	if sess, ok := a.sessions[projectID]; ok {
		return sess, nil
	}
	sess, err := a.svc.Builder.OpenSession(projectID)
	if err != nil {
		return nil, err
	}
	a.sessions[projectID] = sess

	fix := services.NewAutoFixService(a.cfg.CrashCountdown, a.cfg.CrashCooldown, func(reason string) error {
		_, err := a.svc.Builder.StartGeneration(a.ctx, sess, models.JobModeEdit,
			"The live preview crashed with: "+reason+". Fix the error.", services.GenerationOptions{})
		return err
	})
	fix.Startup(a.ctx)
	a.autofix[projectID] = fix
	return sess, nil
}

func (a *App) CreateProject(name string) (*models.Project, error) {
	return a.svc.Projects.Create(name)
}

func (a *App) Generate(projectID uint, mode models.JobMode, prompt string, opts services.GenerationOptions) (*services.GenerationOutcome, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return nil, err
	}
	return a.svc.Builder.StartGeneration(a.ctx, sess, mode, prompt, opts)
}

func (a *App) Chat(projectID uint, prompt string) (*genservice.ChatResult, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return nil, err
	}
	return a.svc.Builder.Chat(a.ctx, sess, prompt, nil)
}

func (a *App) Revert(projectID, turnID uint) (*models.ConversationTurn, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return nil, err
	}
	return a.svc.Snapshots.Revert(a.ctx, sess, turnID)
}

func (a *App) Bundle(projectID uint) (css, script string, err error) {
	sess, err := a.session(projectID)
	if err != nil {
		return "", "", err
	}
	result := sess.Bundle()
	return result.CSS, result.Script, nil
}

func (a *App) Export(projectID uint) (string, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return "", err
	}
	project, err := a.svc.Projects.Get(projectID)
	if err != nil {
		return "", err
	}
	return bundler.Document(project.Name, sess.Bundle()), nil
}

func (a *App) Publish(projectID uint, slug string) (string, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return "", err
	}
	return a.svc.Publisher.Publish(a.ctx, sess, slug)
}

func (a *App) Files(projectID uint) (*models.FileSet, error) {
	sess, err := a.session(projectID)
	if err != nil {
		return nil, err
	}
	return sess.Files(), nil
}

func (a *App) ReportCrash(projectID uint, message string) (bool, error) {
	if _, err := a.session(projectID); err != nil {
		return false, err
	}
	a.sessionMu.Lock()
	fix := a.autofix[projectID]
	a.sessionMu.Unlock()
	return fix.ReportCrash(projectID, message), nil
}

func (a *App) StoreToken(token string) error {
	return a.keyring.StoreToken(token)
}
