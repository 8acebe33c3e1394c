package httpserver

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
})

func serveOpenAPIYAML(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/yaml", openAPIYAML)
}

func serveOpenAPIJSON(c echo.Context) error {
	body, err := openAPIJSON()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render api docs")
	}
	return c.JSONBlob(http.StatusOK, body)
}
