package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/textfit/dsl"
	"github.com/ByLCY/textfit/fonts"
	"github.com/ByLCY/textfit/internal/logging"
	"github.com/ByLCY/textfit/layout"
	"github.com/ByLCY/textfit/renderer"
	canvasrenderer "github.com/ByLCY/textfit/renderer/canvas"
	"github.com/ByLCY/textfit/session"
)

func main() {
	input := flag.String("in", "examples/card.textfit", "模板文件路径")
	output := flag.String("out", "output/card.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "字段计算结果 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到模板的 JSON 数据")
	backend := flag.String("parser", "sfnt", "字体解析后端 (sfnt|gotext)")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	opts := options{
		inputPath:  *input,
		outputPath: *output,
		debugPath:  *debug,
		backend:    *backend,
		data:       inputData,
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

type options struct {
	inputPath  string
	outputPath string
	debugPath  string
	backend    string
	data       any
}

// run 串联解析、字段计算与渲染。
func run(ctx context.Context, opts options) error {
	file, err := os.Open(opts.inputPath)
	if err != nil {
		return fmt.Errorf("无法打开模板文件 %s: %w", opts.inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析模板失败: %w", err)
	}
	tpl, err := layout.Build(doc, opts.data)
	if err != nil {
		return fmt.Errorf("构建字段失败: %w", err)
	}
	for _, path := range tpl.Missing {
		logging.Logger().Warn("placeholder without data", "path", path)
	}

	provider := tpl.Provider(filepath.Dir(opts.inputPath))
	cache := fonts.NewCache(fonts.WithParseOptions(fonts.WithBackend(opts.backend)))
	s := session.New(provider, session.WithCache(cache))
	defer s.Close()

	out := &renderer.Document{Meta: tpl.Meta}
	page := tpl.Meta.Page
	if page == "" {
		page = renderer.DefaultPage
	}
	w, h, ok := renderer.PageSize(page)
	if !ok {
		return fmt.Errorf("未知页面尺寸 %s", page)
	}
	out.Width, out.Height = w, h

	dbg := &layout.Debug{Template: tpl}
	for _, field := range tpl.Fields {
		c, err := s.Compute(ctx, field, field.Content)
		if err != nil {
			return fmt.Errorf("计算字段失败: %w", err)
		}
		dbg.Computations = append(dbg.Computations, c)
		out.Items = append(out.Items, renderer.Item{Field: field, Computation: c})
	}

	if opts.debugPath != "" {
		if err := writeDebug(dbg, opts.debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	var r renderer.Renderer = canvasrenderer.NewRenderer(provider)
	pdfBytes, err := r.Render(out)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(opts.outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(d *layout.Debug, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(d, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
