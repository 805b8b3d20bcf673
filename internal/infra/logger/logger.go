package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
)

var once sync.Once

// Init 初始化全局 zap 日志器，进程内各处通过 zap.L() 使用
func Init() {
	once.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		zap.ReplaceGlobals(l)
	})
}
