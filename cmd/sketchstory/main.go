package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/sketchstory/internal/capture"
)

// version задается при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	code, msg := exitStatus(err)
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	if code != 0 {
		cancel()
		os.Exit(code)
	}
}

// exitStatus переводит ошибку команды в код выхода и сообщение
func exitStatus(err error) (int, string) {
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, context.Canceled):
		return 130, "" // SIGINT
	case errors.Is(err, capture.ErrCaptureUnsupported):
		return 1, fmt.Sprintf("[-] Запись видео недоступна в этом окружении: %v", err)
	case errors.Is(err, capture.ErrEncoderFailure):
		return 1, fmt.Sprintf("[-] Ошибка кодирования: %v", err)
	case errors.Is(err, capture.ErrFlushTimeout):
		return 1, fmt.Sprintf("[-] Энкодер не завершился вовремя: %v", err)
	default:
		return 1, fmt.Sprintf("[-] Ошибка: %v", err)
	}
}
