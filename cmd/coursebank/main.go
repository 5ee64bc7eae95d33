// coursebank 课程库运维命令行：检索、审核队列、审核、导出与管理员授权
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{}
	err := newRootCmd(app).ExecuteContext(ctx)
	app.close()
	stop()
	if err != nil {
		color.Red("错误: %v", err)
		os.Exit(1)
	}
}
