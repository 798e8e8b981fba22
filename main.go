package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api/handlers"
	"github.com/civicwatch/crime-report-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	zap.S().Infow("crime-report-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
