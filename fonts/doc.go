// Package fonts 将逻辑字体名解析为不可变的字体度量。
//
// Provider 根据名字给出 Descriptor（名字、原始字节、样式）。Parse 使用已注册的
// 后端读取字体文件，生成包含 units-per-em、ascent、descent、line gap 与字形
// 前进宽度表的 ParsedFont。Resolve 把解析结果缓存在调用方持有的 Cache 中；
// 没有进程级缓存，两个编辑会话互相看不到对方的条目。
//
// ParsedFont 上的度量值都以字体单位保存，用 Scaled 或 Scale 换算到具体字号。
package fonts
