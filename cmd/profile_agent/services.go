package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/assembly"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/config"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/generation"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/kpi"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/llm"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/observability"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/orgstructure"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/staticdocs"
)

// services are the process-wide collaborators built once per command
type services struct {
	cfg       *config.Config
	logger    *logrus.Logger
	org       *orgstructure.Index
	kpi       *kpi.Store
	mapper    *kpi.Mapper
	resolver  *kpi.Resolver
	docs      *staticdocs.Library
	assembler *assembly.Assembler
	printer   *observability.Printer
}

// newLLMClient is replaced in tests
var newLLMClient = func(ctx context.Context, apiKey string, logger logrus.FieldLogger) (llm.Client, error) {
	return llm.NewClient(ctx, llm.DefaultConfig(), apiKey, llm.WithLogger(logger))
}

// loadConfig reads the env file, the config file and the environment, then
// applies the logging flags.
func loadConfig() (*config.Config, error) {
	if rootEnvFile != "" {
		if _, err := config.LoadEnv([]string{rootEnvFile}); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootLogLevel != "" {
		cfg.Log.Level = rootLogLevel
	}
	if rootLogFormat != "" {
		cfg.Log.Format = rootLogFormat
	}
	return cfg, nil
}

// loadServices bootstraps every static source. Any failure aborts the
// command: a partial bootstrap would silently degrade every context.
func loadServices(cmd *cobra.Command) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	org, err := orgstructure.Load(cfg.Paths.OrgStructure,
		orgstructure.WithThreshold(cfg.Matching.OrgThreshold),
		orgstructure.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load org structure: %w", err)
	}

	store, err := kpi.OpenStore(cfg.Paths.KPIDir, kpi.StoreOptions{
		Keywords: kpi.Keywords{
			Corporate: cfg.KPI.CorporateKeywords,
			Personal:  cfg.KPI.PersonalKeywords,
		},
		DisableCache: cfg.KPI.DisableCache,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open KPI directory: %w", err)
	}

	docs, err := staticdocs.Load(staticdocs.Paths{
		CompanyProfile: cfg.Paths.CompanyProfile,
		ITSystems:      cfg.Paths.ITSystems,
		ProfileSchema:  cfg.Paths.ProfileSchema,
	}, staticdocs.WithThreshold(cfg.Matching.DepartmentThreshold), staticdocs.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	svc := &services{
		cfg:     cfg,
		logger:  logger,
		org:     org,
		kpi:     store,
		mapper:  kpi.NewMapper(store.Keys(), cfg.DepartmentAliases, cfg.Matching.DepartmentThreshold, logger),
		docs:    docs,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		resolver: kpi.NewResolver(kpi.ResolverOptions{
			PositionThreshold: cfg.Matching.PositionThreshold,
			UnitThreshold:     cfg.Matching.UnitThreshold,
			Policy:            cfg.UnresolvedPolicy(),
			Logger:            logger,
		}),
	}

	svc.assembler, err = assembly.New(assembly.Deps{
		Org:      svc.org,
		KPI:      svc.kpi,
		Mapper:   svc.mapper,
		Resolver: svc.resolver,
		Docs:     svc.docs,
	}, assembly.Options{
		Budgets:       cfg.Budgets,
		CharsPerToken: cfg.Tokens.CharsPerToken,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"org_units":     org.Len(),
		"kpi_documents": store.Len(),
		"it_sections":   len(docs.Sections()),
	}).Debug("Services loaded")
	return svc, nil
}

// generator wires an LLM client to the assembler. The caller closes the client.
func (s *services) generator(ctx context.Context) (*generation.Generator, llm.Client, error) {
	if s.cfg.LLM.APIKey == "" {
		return nil, nil, errors.New("no API key: set PROFILEGEN_API_KEY or GEMINI_API_KEY")
	}
	tier, err := llm.ParseTier(s.cfg.LLM.Tier)
	if err != nil {
		return nil, nil, err
	}
	client, err := newLLMClient(ctx, s.cfg.LLM.APIKey, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &generation.Generator{
		Assembler:  s.assembler,
		Client:     client,
		Schema:     s.docs.Schema(),
		SchemaText: s.docs.SchemaText(),
		Tier:       tier,
		Logger:     s.logger,
	}, client, nil
}
