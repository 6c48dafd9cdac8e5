package layout

import "github.com/ByLCY/textfit/fonts"

// Compute 用 font 为 field 排版 text 并计算预览修正量。动态字段在
// field.Dynamic 范围内搜索字号，起始字号默认为 field.FontSize；静态字段
// 固定使用 field.FontSize，只报告是否溢出。
func Compute(field Field, font *fonts.ParsedFont, text string, opts ...FitOption) (Computation, error) {
	cfg := newFitConfig(opts)
	if font == nil {
		return Computation{}, ErrNilFont
	}

	var (
		res Result
		err error
	)
	if field.Dynamic != nil {
		fitOpts := []FitOption{WithLogger(cfg.logger)}
		switch {
		case cfg.hasStart:
			fitOpts = append(fitOpts, WithStartingSize(cfg.startingSize))
		case field.FontSize > 0:
			fitOpts = append(fitOpts, WithStartingSize(field.FontSize))
		}
		res, err = Fit(text, font, field.Box, *field.Dynamic, fitOpts...)
	} else {
		res, err = LayoutAt(text, font, field.Box, field.FontSize, FitVertical)
	}
	if err != nil {
		return Computation{}, err
	}

	adj, err := cfg.calibration.Adjust(font, res.Size, field.Box)
	if err != nil {
		return Computation{}, err
	}
	m := font.Scaled(res.Size)
	return Computation{
		Field:      field.Name,
		Font:       font.Name(),
		Content:    normalizeText(text),
		Result:     res,
		Adjustment: adj,
		Ascent:     m.Ascent,
		Descent:    m.Descent,
		LineGap:    m.LineGap,
	}, nil
}
