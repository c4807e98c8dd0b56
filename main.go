package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/profile"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	textrenderer "github.com/ByLCY/folio/renderer/text"
)

func main() {
	input := flag.String("in", "README.md", "Markdown 输入文件路径")
	output := flag.String("out", "", "输出路径（默认与输入同名，扩展名随 -format）")
	profilePath := flag.String("profile", "", "排版配置文件（.folio / .toml / .yaml）")
	format := flag.String("format", "pdf", "输出格式：pdf 或 txt")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 ${path} 占位符的 JSON 数据，以 @ 开头时表示文件")
	watch := flag.Bool("watch", false, "监听输入与配置文件，变更后重新生成")
	outDir := flag.String("out-dir", "", "批量模式的输出目录（位置参数为多个输入文件）")
	jobs := flag.Int("jobs", 4, "批量模式的并发数")
	flag.Parse()

	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("读取 data 失败: %v", err)
	}

	opts := options{profilePath: *profilePath, format: *format, data: data}
	var jobList []job
	if flag.NArg() > 0 {
		if *output != "" || *debug != "" {
			log.Fatalf("批量模式下请使用 -out-dir，不支持 -out 与 -debug")
		}
		for _, in := range flag.Args() {
			jobList = append(jobList, job{input: in, output: outputPath(in, *outDir, *format)})
		}
	} else {
		out := *output
		if out == "" {
			out = outputPath(*input, "", *format)
		}
		jobList = append(jobList, job{input: *input, output: out, debug: *debug})
	}

	if err := runAll(context.Background(), jobList, opts, *jobs); err != nil {
		if !*watch {
			log.Fatalf("生成失败: %v", err)
		}
		log.Printf("生成失败: %v", err)
	}
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchAndRun(ctx, jobList, opts, *jobs); err != nil {
		log.Fatalf("监听文件失败: %v", err)
	}
}

// options 是所有任务共享的参数。
type options struct {
	profilePath string
	format      string
	data        []byte
}

// job 描述一次输入到输出的转换。
type job struct {
	input  string
	output string
	debug  string
}

func loadData(arg string) ([]byte, error) {
	if arg == "" {
		return nil, nil
	}
	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	if err := binding.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

func outputPath(input, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + format
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// setup 读取配置并创建后端；字体错误在排版开始前暴露。
func setup(opts options) (layout.Config, layout.DocumentMeta, renderer.Backend, error) {
	cfg := layout.DefaultConfig()
	meta := layout.DocumentMeta{Creator: "folio"}
	baseDir := ""
	if opts.profilePath != "" {
		p, err := profile.Load(opts.profilePath)
		if err != nil {
			return cfg, meta, nil, err
		}
		if cfg, err = p.Config(); err != nil {
			return cfg, meta, nil, fmt.Errorf("配置 %s 无效: %w", opts.profilePath, err)
		}
		meta = p.DocumentMeta()
		baseDir = filepath.Dir(opts.profilePath)
	}

	switch strings.ToLower(opts.format) {
	case "pdf":
		r := canvasrenderer.NewRenderer(baseDir)
		if err := r.CheckFonts(cfg); err != nil {
			return cfg, meta, nil, err
		}
		return cfg, meta, r, nil
	case "txt", "text":
		return cfg, meta, textrenderer.ForConfig(cfg), nil
	}
	return cfg, meta, nil, fmt.Errorf("不支持的输出格式：%s", opts.format)
}

// runAll 按配置生成全部任务，批量时并发执行，返回第一个错误。
func runAll(ctx context.Context, jobs []job, opts options, limit int) error {
	cfg, meta, backend, err := setup(opts)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := run(j, cfg, meta, opts.data, backend); err != nil {
				return fmt.Errorf("%s: %w", j.input, err)
			}
			log.Printf("已生成：%s", j.output)
			return nil
		})
	}
	return g.Wait()
}

// run 串联解析、排版、分页与渲染。
func run(j job, cfg layout.Config, meta layout.DocumentMeta, data []byte, backend renderer.Backend) error {
	if backend == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	src, err := os.ReadFile(j.input)
	if err != nil {
		return fmt.Errorf("无法读取输入文件 %s: %w", j.input, err)
	}
	// 绑定值按字面文本插入，不被解释为 Markdown 标记
	src = []byte(binding.InterpolateFunc(string(src), data, markdown.Escape))
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(j.input), filepath.Ext(j.input))
	}

	result, err := layout.Typeset(cfg, backend, markdown.Events(src), meta)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if j.debug != "" {
		if err := writeDebug(result, j.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(j.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// watchAndRun 监听输入文件与配置文件所在目录，文件变化后重新生成全部任务。
// 编辑器保存时往往连续触发多个事件，这里合并 200ms 内的事件。
func watchAndRun(ctx context.Context, jobs []job, opts options, limit int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := map[string]bool{}
	for _, j := range jobs {
		watched[filepath.Clean(j.input)] = true
	}
	if opts.profilePath != "" {
		watched[filepath.Clean(opts.profilePath)] = true
	}
	dirs := map[string]bool{}
	for path := range watched {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("监听目录 %s 失败: %w", dir, err)
		}
	}
	log.Printf("正在监听 %d 个文件，按 Ctrl+C 退出", len(watched))

	const debounce = 200 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("监听出错: %v", err)
		case <-timer.C:
			if err := runAll(ctx, jobs, opts, limit); err != nil {
				log.Printf("生成失败: %v", err)
			}
		}
	}
}
