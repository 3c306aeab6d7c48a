// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-card/internal/lookup"
	"github.com/pdiddy/report-card/internal/secrets"
	"github.com/pdiddy/report-card/pkg/types"
)

// Configuration keys. Each maps to REPORT_CARD_<KEY> in the environment,
// with dots replaced by underscores.
const (
	keyBaseURL         = "record_service.base_url"
	keyTimeout         = "record_service.timeout"
	keyUserAgent       = "record_service.user_agent"
	keyToken           = "record_service.token"
	keyMaxRetries      = "record_service.max_retries"
	keyBannerThreshold = "banner.threshold"
	keyBannerDuration  = "banner.duration"
	keyHistoryDir      = "history.dir"
	keyHistoryDisabled = "history.disabled"
	keyServeAddress    = "serve.address"
	keyServeNoReqLogs  = "serve.disable_request_logs"
)

const (
	defaultBaseURL    = "http://localhost:5000"
	defaultTimeout    = 30 * time.Second
	defaultHistoryDir = "history"
	defaultServeAddr  = "127.0.0.1:8080"
)

// flagKeys maps command flags onto configuration keys. A flag set on the
// command line wins over the config file and environment.
var flagKeys = map[string]string{
	"base-url":    keyBaseURL,
	"timeout":     keyTimeout,
	"retries":     keyMaxRetries,
	"no-history":  keyHistoryDisabled,
	"history-dir": keyHistoryDir,
	"addr":        keyServeAddress,
	"quiet":       keyServeNoReqLogs,
}

func setDefaults() {
	viper.SetDefault(keyBaseURL, defaultBaseURL)
	viper.SetDefault(keyTimeout, defaultTimeout)
	viper.SetDefault(keyUserAgent, "report-card/"+version)
	viper.SetDefault(keyMaxRetries, 0)
	viper.SetDefault(keyBannerThreshold, lookup.DefaultBannerThreshold)
	viper.SetDefault(keyBannerDuration, lookup.DefaultBannerDuration)
	viper.SetDefault(keyHistoryDir, defaultHistoryDir)
	viper.SetDefault(keyHistoryDisabled, false)
	viper.SetDefault(keyServeAddress, defaultServeAddr)
	viper.SetDefault(keyServeNoReqLogs, false)
}

// bindFlags binds the flags of the command being run. Binding happens per
// invocation because lookup and serve share flag names.
func bindFlags(cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// appConfig resolves the effective configuration from flags, the config
// file, the environment, and defaults. The record service token falls
// back to .secrets/record-service-token.
func appConfig() types.AppConfig {
	return types.AppConfig{
		RecordService: types.RecordServiceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration(keyTimeout),
				UserAgent: viper.GetString(keyUserAgent),
			},
			BaseURL:    viper.GetString(keyBaseURL),
			Token:      loadedSecrets.Or(secrets.RecordServiceToken, viper.GetString(keyToken)),
			MaxRetries: viper.GetInt(keyMaxRetries),
		},
		Banner: types.BannerConfig{
			Threshold: viper.GetFloat64(keyBannerThreshold),
			Duration:  viper.GetDuration(keyBannerDuration),
		},
		History: types.HistoryConfig{
			Dir:      viper.GetString(keyHistoryDir),
			Disabled: viper.GetBool(keyHistoryDisabled),
		},
		Serve: types.ServeConfig{
			Address:            viper.GetString(keyServeAddress),
			DisableRequestLogs: viper.GetBool(keyServeNoReqLogs),
		},
	}
}
