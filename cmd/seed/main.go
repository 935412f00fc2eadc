// seed carga bodegas y productos desde archivos CSV en el almacenamiento configurado.
//
// Uso: go run ./cmd/seed -warehouses bodegas.csv -products productos.csv [-charset latin1]
//
// Columnas de bodegas: code,name,address,type
// Columnas de productos: sku,name,category,unit_measure,reorder_level
// La primera fila es el encabezado. Los registros cuyo código o SKU ya existe se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/storage"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

func main() {
	var warehousesPath, productsPath, charset string
	flag.StringVar(&warehousesPath, "warehouses", "", "CSV de bodegas")
	flag.StringVar(&productsPath, "products", "", "CSV de productos")
	flag.StringVar(&charset, "charset", "utf-8", "codificación de los CSV (utf-8 | latin1)")
	flag.Parse()

	if warehousesPath == "" && productsPath == "" {
		fmt.Fprintln(os.Stderr, "indique -warehouses y/o -products")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}, os.Stderr).Named("seed")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer backend.Close()

	if warehousesPath != "" {
		rows, err := readCSVFile(warehousesPath, charset, parseWarehouses)
		if err != nil {
			log.Fatal().Err(err).Str("file", warehousesPath).Msg("leer bodegas")
		}
		uc := usecase.NewWarehouseUseCase(backend.Warehouses)
		created, skipped := 0, 0
		for _, in := range rows {
			if _, err := uc.Create(ctx, in); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					skipped++
					continue
				}
				log.Fatal().Err(err).Str("code", in.Code).Msg("crear bodega")
			}
			created++
		}
		log.Info().Int("created", created).Int("skipped", skipped).Msg("bodegas cargadas")
	}

	if productsPath != "" {
		rows, err := readCSVFile(productsPath, charset, parseProducts)
		if err != nil {
			log.Fatal().Err(err).Str("file", productsPath).Msg("leer productos")
		}
		uc := usecase.NewProductUseCase(backend.Products)
		created, skipped := 0, 0
		for _, in := range rows {
			if _, err := uc.Create(ctx, in); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					skipped++
					continue
				}
				log.Fatal().Err(err).Str("sku", in.SKU).Msg("crear producto")
			}
			created++
		}
		log.Info().Int("created", created).Int("skipped", skipped).Msg("productos cargados")
	}
}

// readCSVFile abre path (relativo al directorio actual o a la raíz del módulo) y lo decodifica con parse.
func readCSVFile[T any](path, charset string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !filepath.IsAbs(path) {
		f, err = os.Open(filepath.Join(findModuleRoot(), path))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decodeCharset(f, charset)
	if err != nil {
		return nil, err
	}
	return parse(r)
}

// decodeCharset envuelve r para entregar UTF-8.
func decodeCharset(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado: %q", charset)
}

// csvRecords lee el CSV y devuelve cada fila como mapa encabezado -> valor.
func csvRecords(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}

	var out []map[string]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := make(map[string]string, len(cols))
		for name, i := range cols {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func parseWarehouses(r io.Reader) ([]dto.CreateWarehouseRequest, error) {
	rows, err := csvRecords(r, "code", "name")
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreateWarehouseRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.CreateWarehouseRequest{
			Code:    row["code"],
			Name:    row["name"],
			Address: row["address"],
			Type:    strings.ToLower(row["type"]),
		})
	}
	return out, nil
}

func parseProducts(r io.Reader) ([]dto.CreateProductRequest, error) {
	rows, err := csvRecords(r, "sku", "name")
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreateProductRequest, 0, len(rows))
	for i, row := range rows {
		reorder := decimal.Zero
		if v := row["reorder_level"]; v != "" {
			// admite coma decimal ("12,5")
			d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("línea %d: reorder_level %q: %w", i+2, v, err)
			}
			reorder = d
		}
		out = append(out, dto.CreateProductRequest{
			SKU:          row["sku"],
			Name:         row["name"],
			Category:     row["category"],
			UnitMeasure:  row["unit_measure"],
			ReorderLevel: reorder,
		})
	}
	return out, nil
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
