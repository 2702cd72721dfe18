// Команда calc - интерактивный калькулятор поверх удаленного сервиса вычислений.
//
// С флагом -keys нажатия берутся из строки, а экран печатается после каждого
// шага: calc -keys "5+3=".
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"remotecalc/internal/config"
	"remotecalc/internal/orchestrator"
	"remotecalc/internal/tui"
)

func main() {
	keys := flag.String("keys", "", "нажатия для неинтерактивного запуска, например \"5+3=\"")
	url := flag.String("url", "", "адрес сервиса вычислений (по умолчанию CALC_SERVICE_URL)")
	logFile := flag.String("log", "calc.log", "файл журнала интерактивного режима")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	if *url != "" {
		cfg.Client.ServiceURL = *url
	}

	orch := orchestrator.New(
		orchestrator.NewHTTPClient(cfg.Client.ServiceURL, cfg.Client.RequestTimeout),
		orchestrator.Config{PollInterval: cfg.Client.PollInterval, MaxAttempts: cfg.Client.MaxAttempts},
	)
	model := tui.New(context.Background(), orch, cfg.Client.ErrorDisplay)

	if *keys != "" {
		runKeys(model, *keys)
		return
	}

	f, err := tea.LogToFile(*logFile, "calc")
	if err != nil {
		log.Fatalf("Не удалось открыть журнал: %v", err)
	}
	defer f.Close()

	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		os.Exit(1)
	}
}

func runKeys(model tui.Model, input string) {
	var keys []string
	for _, r := range input {
		if r == ' ' {
			continue
		}
		keys = append(keys, string(r))
	}

	final := tui.Drive(model, keys, func(msg tea.Msg, m tui.Model) {
		label := "->"
		if k, ok := msg.(tea.KeyMsg); ok {
			label = k.String()
		}
		fmt.Printf("%-3s %s\n", label, m.State().Display)
	})

	if err := final.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
	}
	fmt.Println(strings.TrimSpace(final.State().Display))
}
