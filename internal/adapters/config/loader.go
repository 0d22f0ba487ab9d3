// Package config provides the configuration loader for cicd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/zerr"
)

// supportedVersion is the project file schema version this loader understands.
const supportedVersion = "1"

// Loader implements ports.ConfigLoader using YAML files read through viper.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// DiscoverRoot walks up from cwd to find the directory containing cicd.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// Load reads cicd.yaml and the environment files it points at.
// When stages is non-empty only those deployment stages are returned, in that order.
func (l *Loader) Load(cwd string, stages []string) (*domain.Project, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(configPath)

	pf, err := l.loadProjectFile(configPath)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Root:   root,
		Output: resolveOutput(root, pf.Output),
		Pipeline: domain.PipelineOptions{
			StackName:                pf.Stack,
			ParallelBuilds:           pf.Pipeline.ParallelBuilds,
			RestartExecutionOnUpdate: pf.Pipeline.RestartExecutionOnUpdate,
			CrossAccountKeys:         pf.Pipeline.CrossAccountKeys,
		},
	}

	envs, err := l.loadEnvironments(root, pf.Environments)
	if err != nil {
		return nil, err
	}

	project.Environments, err = selectEnvironments(envs, stages)
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
	}

	for {
		configPath := filepath.Join(currentDir, domain.ProjectFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) loadProjectFile(configPath string) (*ProjectFile, error) {
	defaults := domain.DefaultPipelineOptions()
	pf := ProjectFile{
		Version:      supportedVersion,
		Stack:        defaults.StackName,
		Output:       domain.DefaultAssemblyDir,
		Environments: domain.DefaultEnvironmentsDir,
		Pipeline: PipelineDTO{
			ParallelBuilds:           defaults.ParallelBuilds,
			RestartExecutionOnUpdate: defaults.RestartExecutionOnUpdate,
			CrossAccountKeys:         defaults.CrossAccountKeys,
		},
	}

	v, err := readFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := bindOverrides(v, domain.EnvPrefix, projectKeys); err != nil {
		return nil, err
	}
	if err := decode(v, configPath, &pf); err != nil {
		return nil, err
	}

	if pf.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.ProjectFileName, pf.Version, supportedVersion))
	}
	return &pf, nil
}

func (l *Loader) loadEnvironments(root, dir string) ([]domain.Params, error) {
	envDir := dir
	if !filepath.IsAbs(envDir) {
		envDir = filepath.Join(root, envDir)
	}

	files, err := environmentFiles(envDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, zerr.With(domain.ErrNoEnvironments, "dir", envDir)
	}

	envs := make([]domain.Params, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		ef, err := readEnvironmentFile(file)
		if err != nil {
			return nil, err
		}

		source := file
		if rel, err := filepath.Rel(root, file); err == nil {
			source = rel
		}

		params := toParams(ef, source)
		if params.StageName != "" {
			if prev, ok := seen[params.StageName]; ok {
				err := zerr.With(domain.ErrDuplicateStage, "stage", params.StageName)
				return nil, zerr.With(err, "files", prev+", "+source)
			}
			seen[params.StageName] = source
		}
		envs = append(envs, params)
	}

	if len(seen) < len(envs) {
		l.Logger.Warn("some environment files do not declare a stageName")
	}
	return envs, nil
}

func environmentFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "dir", dir)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return files, nil
}

func selectEnvironments(envs []domain.Params, stages []string) ([]domain.Params, error) {
	if len(stages) == 0 {
		return envs, nil
	}

	byStage := lo.KeyBy(envs, func(p domain.Params) string { return p.StageName })
	selected := make([]domain.Params, 0, len(stages))
	for _, stage := range lo.Uniq(stages) {
		params, ok := byStage[stage]
		if !ok {
			available := lo.Filter(lo.Keys(byStage), func(s string, _ int) bool { return s != "" })
			slices.Sort(available)
			err := zerr.With(domain.ErrEnvironmentNotFound, "stage", stage)
			return nil, zerr.With(err, "available", strings.Join(available, ", "))
		}
		selected = append(selected, params)
	}
	return selected, nil
}

func toParams(ef *EnvironmentFile, source string) domain.Params {
	return domain.Params{
		StageName:          strings.TrimSpace(ef.StageName),
		CodeStarConnection: strings.TrimSpace(ef.CodeStarConnection),
		Env: domain.Env{
			Account: strings.TrimSpace(ef.Env.Account),
			Region:  strings.TrimSpace(ef.Env.Region),
		},
		Repo: domain.Repo{
			Owner:  strings.TrimSpace(ef.Repo.Owner),
			Name:   strings.TrimSpace(ef.Repo.Name),
			Branch: strings.TrimSpace(ef.Repo.Branch),
		},
		Source: source,
	}
}

// readEnvironmentFile reads one deployment-stage file. Overrides are scoped to the stage the
// file declares, so CICD_DEV_REPO_BRANCH changes dev only. A file without a stageName
// takes no overrides.
func readEnvironmentFile(path string) (*EnvironmentFile, error) {
	v, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if stage := strings.TrimSpace(v.GetString("stageName")); stage != "" {
		if err := bindOverrides(v, stagePrefix(stage), environmentKeys); err != nil {
			return nil, err
		}
	}

	var ef EnvironmentFile
	if err := decode(v, path, &ef); err != nil {
		return nil, err
	}
	return &ef, nil
}

// stagePrefix returns the environment variable prefix of the overrides for a deployment stage.
func stagePrefix(stage string) string {
	return domain.EnvPrefix + "_" + strings.ToUpper(stage)
}

func readFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
	}
	return v, nil
}

// bindOverrides lets <prefix>_<KEY> environment variables override the given keys only.
func bindOverrides(v *viper.Viper, prefix string, keys []string) error {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "key", key)
		}
	}
	return nil
}

func decode(v *viper.Viper, path string, out any) error {
	if err := v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", path)
	}
	return nil
}

// resolveOutput anchors a relative directory at the project root. URLs are kept as is.
func resolveOutput(root, output string) string {
	if output == "" {
		output = domain.DefaultAssemblyDir
	}
	if strings.Contains(output, "://") || filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(root, output)
}
