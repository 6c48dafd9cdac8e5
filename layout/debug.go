package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Debug 汇总模板与各字段的计算结果，用于调试输出。
type Debug struct {
	Template     *Template     `json:"template,omitempty"`
	Computations []Computation `json:"computations"`
}

// EncodeDebugJSON 将 d 以缩进 JSON 写入 w。
func EncodeDebugJSON(w io.Writer, d *Debug) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode debug json: %w", err)
	}
	return nil
}

// WriteDebugJSON 将计算结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(d *Debug, path string) error {
	if d == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
