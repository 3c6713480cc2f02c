// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// EnvDumpPrefix: optional prefix for env lookup (e.g., "DOCANON")
const EnvDumpPrefix = "DOCANON"

// Config holds all logical keys. Tags:
// - vkey: Viper key
// - env: canonical env name (UPPER_SNAKE). If empty, derived from vkey
// - persist: "true" to write the key into the INI
// - default: optional default to set if key is unset
// - secret: "true" if sensitive
// - bind: "false" to NOT bind from env (we still can set defaults)
type Config struct {
	AnonymizerEndpoint   string `vkey:"anonymizer_endpoint"    env:"ANONYMIZER_ENDPOINT"    persist:"true" default:"http://localhost:8000"`
	AnonymizerSinglePath string `vkey:"anonymizer_single_path" env:"ANONYMIZER_SINGLE_PATH" persist:"true" default:"/anonymize-single"`
	AnonymizerBatchPath  string `vkey:"anonymizer_batch_path"  env:"ANONYMIZER_BATCH_PATH"  persist:"true" default:"/anonymize"`
	MaxConcurrency       string `vkey:"max_concurrency"        env:"MAX_CONCURRENCY"        persist:"true" default:"0"`
	RequestTimeout       string `vkey:"request_timeout"        env:"REQUEST_TIMEOUT"        persist:"true" default:"0s"`
	AcceptExtensions     string `vkey:"accept_extensions"      env:"ACCEPT_EXTENSIONS"      persist:"true" default:".pdf,.docx"`

	AwsAccessKeyID     string `vkey:"aws_access_key_id"     env:"AWS_ACCESS_KEY_ID"     persist:"true" secret:"true"`
	AwsSecretAccessKey string `vkey:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY" persist:"true" secret:"true"`
	AwsSessionToken    string `vkey:"aws_session_token"     env:"AWS_SESSION_TOKEN"     persist:"true" secret:"true"`
	AwsRegion          string `vkey:"aws_region"            env:"AWS_REGION"            persist:"true"`
	AwsEndpointURL     string `vkey:"aws_endpoint_url"      env:"AWS_ENDPOINT_URL"      persist:"true"`
	S3Bucket           string `vkey:"s3_bucket"             env:"S3_BUCKET"             persist:"true"`
	S3Prefix           string `vkey:"s3_prefix"             env:"S3_PREFIX"             persist:"true" default:"anonymized"`

	IniSource          string `vkey:"ini_source"          env:"INI_SOURCE"          persist:"true"`
	UpdatedEnvironment string `vkey:"updated_environment" env:"UPDATED_ENVIRONMENT" persist:"true" bind:"false"`
	CurrentEnvironment string `vkey:"current_environment" env:"CURRENT_ENVIRONMENT" persist:"false"`
}

// resolveEnvName: --env > "default"
func resolveEnvName(optionalEnv ...string) string {
	if len(optionalEnv) > 0 && optionalEnv[0] != "" && strings.ToLower(optionalEnv[0]) != "null" {
		return optionalEnv[0]
	}
	return "default"
}

// mirror PREFIX_FOO -> FOO (optional)
func mirrorPrefix(prefix string) {
	if prefix == "" {
		return
	}
	upPrefix := strings.ToUpper(prefix) + "_"
	for _, e := range os.Environ() {
		kv := strings.SplitN(e, "=", 2)
		if len(kv) != 2 {
			continue
		}
		name, val := kv[0], kv[1]
		if strings.HasPrefix(name, upPrefix) {
			unpref := strings.TrimPrefix(name, upPrefix)
			if os.Getenv(unpref) == "" {
				_ = os.Setenv(unpref, val)
			}
		}
	}
}

// visitConfigFields calls fn for every field of Config carrying a vkey tag.
func visitConfigFields(fn func(f reflect.StructField, key string)) {
	rt := reflect.TypeOf(Config{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}
		fn(f, key)
	}
}

func envNameFor(f reflect.StructField, key string) string {
	if env := f.Tag.Get("env"); env != "" {
		return env
	}
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// BindEnvFromStruct binds env for all fields of Config using struct tags.
func BindEnvFromStruct(prefix string) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	mirrorPrefix(prefix)

	visitConfigFields(func(f reflect.StructField, key string) {
		if f.Tag.Get("bind") != "false" {
			_ = viper.BindEnv(key, envNameFor(f, key))
		}
		if def := f.Tag.Get("default"); def != "" && !viper.IsSet(key) {
			viper.SetDefault(key, def)
		}
	})
}

// persistedValues collects the current Viper values of persist:"true" keys.
func persistedValues() map[string]string {
	out := map[string]string{}
	visitConfigFields(func(f reflect.StructField, key string) {
		if f.Tag.Get("persist") != "true" {
			return
		}
		if val := viper.GetString(key); val != "" {
			out[key] = val
		}
	})
	return out
}

// WriteIniFromStruct writes a new INI with only fields marked persist:"true".
func WriteIniFromStruct(iniPath, envName string) error {
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	sec := cfg.Section(envName)
	for k, v := range persistedValues() {
		sec.Key(k).SetValue(v)
	}
	return cfg.SaveTo(iniPath)
}

// UpdateIniFromStruct updates or creates the INI section from current Viper values.
func UpdateIniFromStruct(iniPath, envName string) error {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return WriteIniFromStruct(iniPath, envName)
	}
	sec := cfg.Section(envName)
	for k, v := range persistedValues() {
		sec.Key(k).SetValue(v)
	}
	if !cfg.Section("DEFAULT").HasKey(CurrentEnvironment) {
		cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	}
	sec.Key(UpdatedEnvKey).SetValue(time.Now().UTC().Format(time.RFC3339))
	return cfg.SaveTo(iniPath)
}

func sectionMap(sec *ini.Section) map[string]interface{} {
	m := make(map[string]interface{})
	for _, k := range sec.Keys() {
		m[k.Name()] = k.Value()
	}
	return m
}

// loadIniSectionIntoViper loads [DEFAULT] + [env] into Viper (TOML in-memory).
// ENV can still override on Get().
func loadIniSectionIntoViper(cfg *ini.File, env string) error {
	def := cfg.Section("DEFAULT")
	selected := def
	if env != "" && cfg.HasSection(env) {
		selected = cfg.Section(env)
		infof("Using env: [%s]", env)
	} else if env == "" || strings.EqualFold(env, "DEFAULT") {
		infof("Using env: [DEFAULT]")
	} else {
		warnf("Env %q not found, falling back to [DEFAULT]", env)
	}

	merged := sectionMap(def)
	if selected != def {
		merged = MergeMaps(merged, sectionMap(selected))
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		v := fmt.Sprint(merged[k])
		vSafe := strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`)
		_, _ = fmt.Fprintf(&buf, "%s = \"%s\"\n", k, vSafe)
	}
	viper.SetConfigType("toml")
	return viper.ReadConfig(&buf)
}

// RegisterIniCfgWithViper:
// 1) bind ENV from struct (live)
// 2) load INI, or bootstrap it from ENV when missing (writes only target env)
// 3) load active section into Viper and set current_environment
func RegisterIniCfgWithViper(optionalEnv ...string) error {
	iniPath := getIniPath()

	BindEnvFromStruct(EnvDumpPrefix)

	cfg, err := ini.Load(iniPath)
	if err != nil {
		infof("INI not found at %s; reading configuration from env", iniPath)
		envName, bootErr := bootstrapFromEnv(iniPath, optionalEnv...)
		if bootErr != nil {
			warnf("Bootstrap failed: %v", bootErr)
			if envName == "" {
				envName = resolveEnvName(optionalEnv...)
			}
			viper.Set(CurrentEnvironment, envName)
			return nil
		}
		cfg, err = ini.Load(iniPath)
		if err != nil {
			warnf("INI written but cannot reload: %v (ENV-only mode)", err)
			return nil
		}
	}

	// active env: --env > DEFAULT.current_environment > default
	env := resolveEnvName(optionalEnv...)
	if env == "default" {
		if v := cfg.Section("DEFAULT").Key(CurrentEnvironment).String(); v != "" {
			env = v
		}
	}

	if err := loadIniSectionIntoViper(cfg, env); err != nil {
		return fmt.Errorf("failed to load INI into viper: %w", err)
	}
	viper.Set(CurrentEnvironment, env)
	return nil
}

// bootstrapFromEnv runs when the INI is missing: read all variables from OS envs
// using the Config struct, then persist them.
// - honors `bind:"false"` (skip ENV read for that key)
// - applies `default:"..."` only if key is unset
func bootstrapFromEnv(iniPath string, optionalEnv ...string) (string, error) {
	visitConfigFields(func(f reflect.StructField, key string) {
		if !strings.EqualFold(f.Tag.Get("bind"), "false") {
			if val, ok := os.LookupEnv(envNameFor(f, key)); ok {
				viper.Set(key, val)
				return
			}
		}
		if def := f.Tag.Get("default"); def != "" && !viper.IsSet(key) {
			viper.SetDefault(key, def)
		}
	})

	envName := resolveEnvName(optionalEnv...)
	viper.Set(CurrentEnvironment, envName)

	// the INI was built from env
	viper.Set(IniSource, "env")

	if err := WriteIniFromStruct(iniPath, envName); err != nil {
		return envName, fmt.Errorf("write ini failed: %w", err)
	}
	if _, err := ini.Load(iniPath); err != nil {
		return envName, fmt.Errorf("ini written but cannot reload: %w", err)
	}
	return envName, nil
}

// LoadConfig turns the current Viper state into the SDK configuration.
func LoadConfig() (config.Config, error) {
	var timeout time.Duration
	if raw := strings.TrimSpace(viper.GetString(RequestTimeout)); raw != "" && raw != "0" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid %s %q: %w", RequestTimeout, raw, err)
		}
		timeout = d
	}

	var concurrency int
	if raw := strings.TrimSpace(viper.GetString(MaxConcurrency)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return config.Config{}, fmt.Errorf("invalid %s %q: must be a non-negative integer", MaxConcurrency, raw)
		}
		concurrency = n
	}

	return config.Config{
		Core: config.CoreConfig{
			BaseURL:    viper.GetString(AnonymizerEndpoint),
			SinglePath: viper.GetString(AnonymizerSinglePath),
			BatchPath:  viper.GetString(AnonymizerBatchPath),
		}.WithDefaults(),
		Upload: config.UploadConfig{
			MaxConcurrency:   concurrency,
			RequestTimeout:   timeout,
			AcceptExtensions: SplitList(viper.GetString(AcceptExtensions)),
		},
		S3: config.S3Config{
			AccessKey:   viper.GetString(AwsAccessKeyID),
			SecretKey:   viper.GetString(AwsSecretAccessKey),
			AccessToken: viper.GetString(AwsSessionToken),
			Region:      viper.GetString(AwsRegion),
			EndpointURL: viper.GetString(AwsEndpointURL),
			Bucket:      viper.GetString(S3Bucket),
			Prefix:      viper.GetString(S3Prefix),
		},
	}, nil
}
