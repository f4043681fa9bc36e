package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听配置文件变更并回调最新配置。策略/风控参数在进程生命周期内不变，
// 回调只用于提示操作员重启生效，不热应用。
type Watcher struct {
	Path     string
	Cooldown time.Duration // 去抖：编辑器保存常触发多个事件
}

// Start 阻塞运行直到 ctx 结束；文件内容变化且通过校验时调用 onChange。
func (w Watcher) Start(ctx context.Context, onChange func(AppConfig)) error {
	if w.Path == "" {
		return fmt.Errorf("watcher path required")
	}
	if w.Cooldown <= 0 {
		w.Cooldown = time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// 监听目录而不是文件本身：原子替换（rename+create）会丢失文件级 watch。
	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.Path)
	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(lastReload) < w.Cooldown {
				continue
			}
			lastReload = time.Now()
			if cfg, err := LoadWithEnvOverrides(w.Path); err == nil && onChange != nil {
				onChange(cfg)
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
