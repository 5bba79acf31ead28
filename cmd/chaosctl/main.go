// chaosctl — запуск chaos-сценариев из YAML/JSON файлов.
//
// Использование:
//
//	chaosctl [--json] [--log-level LEVEL] <command> [flags]
//
// Команды:
//
//	run       Выполнить сценарий
//	validate  Проверить файл сценария
//	topology  Показать цепочку stages
//	schedule  Запускать сценарий по расписанию
//	watch     Читать события run из RabbitMQ
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Chaosflow/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
