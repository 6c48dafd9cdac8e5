package layout

import "log/slog"

// fitConfig 汇总 Fit 与 Compute 的可选参数。
type fitConfig struct {
	startingSize float64
	hasStart     bool
	calibration  Calibration
	logger       *slog.Logger
}

func newFitConfig(opts []FitOption) fitConfig {
	cfg := fitConfig{calibration: DefaultCalibration}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FitOption configures Fit and Compute.
type FitOption func(*fitConfig)

// WithStartingSize 设置搜索首次探测的字号，通常是上一次编辑得到的字号。
// 未设置时从 Bounds.Max 开始。结果与起始字号无关。
func WithStartingSize(size float64) FitOption {
	return func(c *fitConfig) {
		c.startingSize = size
		c.hasStart = true
	}
}

// WithCalibration 替换 Compute 使用的 DefaultCalibration。
func WithCalibration(cal Calibration) FitOption {
	return func(c *fitConfig) { c.calibration = cal }
}

// WithLogger routes search diagnostics to l.
func WithLogger(l *slog.Logger) FitOption {
	return func(c *fitConfig) { c.logger = l }
}
