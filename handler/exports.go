package handler

import (
	"archive/zip"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"time"

	mid "cellscope/middleware"
	"cellscope/model/model"
	"cellscope/model/store"
	U "cellscope/util"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateLayout = "2006-01-02"

	// Excel sheet name limit.
	maxSheetNameLen = 31
)

// imageDownloadClient fetches stored images for zip exports.
var imageDownloadClient = &http.Client{Timeout: 30 * time.Second}

// ExportDatasetExcelHandler renders one dataset as a workbook. Multiple
// file datasets get a Summary and a Details sheet, single file datasets
// one Results sheet.
func ExportDatasetExcelHandler(c *gin.Context) {
	dataset, errCode := store.GetStore().GetDataset(c.Param("id"))
	if errCode != http.StatusFound {
		abortWithDatasetError(c, errCode)
		return
	}

	file := excelize.NewFile()
	if dataset.ModelOutput.IsMultiple() {
		addSheet(file, "Summary", datasetSummaryRows(dataset))
		addSheet(file, "Details", datasetDetailRows(dataset.ModelOutput.Results))
	} else {
		addSheet(file, "Results", datasetSummaryRows(dataset))
	}
	file.DeleteSheet("Sheet1")

	buffer, err := file.WriteToBuffer()
	if err != nil {
		log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID)).
			WithError(err).Error("Excel export failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Failed to export Excel file", "error": err.Error()})
		return
	}

	fileName := U.SanitizeFilename(dataset.Name) + "_results.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, excelContentType, buffer.Bytes())
}

// ExportUserDatasetsExcelHandler renders all of a user's datasets into
// one workbook: an overview sheet plus one sheet per dataset.
func ExportUserDatasetsExcelHandler(c *gin.Context) {
	datasets, errCode := store.GetStore().GetDatasetsByUser(c.Param("id"))
	if errCode != http.StatusFound {
		if errCode == http.StatusBadRequest {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
			return
		}
		c.AbortWithStatusJSON(errCode, gin.H{"message": "Failed to export Excel file"})
		return
	}
	if len(datasets) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "No datasets found"})
		return
	}

	file := excelize.NewFile()
	addSheet(file, "All Datasets", allDatasetsRows(datasets))
	for i := range datasets {
		name := fmt.Sprintf("Dataset_%d", i+1)
		if len(name) > maxSheetNameLen {
			name = name[:maxSheetNameLen]
		}
		addSheet(file, name, singleDatasetSheetRows(&datasets[i]))
	}
	file.DeleteSheet("Sheet1")

	buffer, err := file.WriteToBuffer()
	if err != nil {
		log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID)).
			WithError(err).Error("Excel export failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Failed to export Excel file", "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="all_datasets_results.xlsx"`)
	c.Data(http.StatusOK, excelContentType, buffer.Bytes())
}

// ExportDatasetZipHandler bundles a dataset's original and annotated
// images into a zip. Images that fail to download are skipped; an export
// where nothing could be fetched is a bad request.
func ExportDatasetZipHandler(c *gin.Context) {
	logCtx := log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))

	dataset, errCode := store.GetStore().GetDataset(c.Param("id"))
	if errCode != http.StatusFound {
		abortWithDatasetError(c, errCode)
		return
	}

	type zipEntry struct {
		name string
		body []byte
	}
	entries := make([]zipEntry, 0)

	download := func(url, name string) {
		if url == "" {
			return
		}
		body, err := downloadImage(url)
		if err != nil {
			logCtx.WithField("url", url).WithError(err).Warn("Skipping image for zip export.")
			return
		}
		entries = append(entries, zipEntry{name: name, body: body})
	}

	if dataset.ModelOutput.IsMultiple() {
		for i := range dataset.ModelOutput.Results {
			result := &dataset.ModelOutput.Results[i]
			imageName := U.SanitizeFilename(result.ImageName)
			if imageName == "" {
				imageName = fmt.Sprintf("image_%d", i+1)
			}
			folder := fmt.Sprintf("File_%d_%s", i+1, imageName)
			download(result.Original, fmt.Sprintf("%s/original.%s", folder, U.ExtensionFromURL(result.Original)))
			download(result.Annotated, fmt.Sprintf("%s/predicted.%s", folder, U.ExtensionFromURL(result.Annotated)))
		}
	} else {
		folder := U.SanitizeFilename(dataset.Name)
		download(dataset.ModelOutput.Original, fmt.Sprintf("%s/original.%s", folder, U.ExtensionFromURL(dataset.ModelOutput.Original)))
		download(dataset.ModelOutput.Annotated, fmt.Sprintf("%s/predicted.%s", folder, U.ExtensionFromURL(dataset.ModelOutput.Annotated)))
	}

	if len(entries) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"message": "No images could be added to the ZIP file"})
		return
	}

	fileName := U.SanitizeFilename(dataset.Name) + "_images.zip"
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)

	writer := zip.NewWriter(c.Writer)
	for _, entry := range entries {
		w, err := writer.Create(entry.name)
		if err != nil {
			logCtx.WithError(err).Error("Zip export failed mid-stream.")
			return
		}
		if _, err := w.Write(entry.body); err != nil {
			logCtx.WithError(err).Error("Zip export failed mid-stream.")
			return
		}
	}
	if err := writer.Close(); err != nil {
		logCtx.WithError(err).Error("Zip export failed on close.")
	}
}

func downloadImage(url string) ([]byte, error) {
	resp, err := imageDownloadClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return ioutil.ReadAll(resp.Body)
}

func addSheet(file *excelize.File, name string, rows [][]interface{}) {
	file.NewSheet(name)
	for r, row := range rows {
		for col, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				continue
			}
			file.SetCellValue(name, cell, value)
		}
	}
}

func orDefault(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func summaryRows(summary model.Summary) [][]interface{} {
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]interface{}, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []interface{}{key, summary[key]})
	}
	return rows
}

func datasetSummaryRows(dataset *model.Dataset) [][]interface{} {
	rows := [][]interface{}{
		{"Dataset Summary"},
		{"Dataset Name", dataset.Name},
		{"Description", orDefault(dataset.Description)},
	}
	if dataset.ModelOutput.IsMultiple() {
		rows = append(rows, []interface{}{"Total Files", len(dataset.ModelOutput.Results)})
	}
	rows = append(rows,
		[]interface{}{"Created At", dataset.CreatedAt.Format(exportDateLayout)},
		[]interface{}{},
	)
	if dataset.ModelOutput.IsMultiple() {
		rows = append(rows, []interface{}{"Total Prediction Summary"})
		rows = append(rows, summaryRows(dataset.ModelOutput.TotalSummary)...)
	} else {
		rows = append(rows, []interface{}{"Prediction Summary"})
		rows = append(rows, summaryRows(dataset.ModelOutput.Summary)...)
	}
	return rows
}

func datasetDetailRows(results []model.AnalysisResult) [][]interface{} {
	header := []interface{}{"File Name", "Image Name", "Annotation Name"}
	for _, class := range model.ClassNames {
		header = append(header, class)
	}

	rows := [][]interface{}{header}
	for i := range results {
		result := &results[i]
		row := []interface{}{
			fmt.Sprintf("File %d", i+1),
			orDefault(result.ImageName),
			orDefault(result.AnnotationName),
		}
		for _, class := range model.ClassNames {
			row = append(row, result.Summary[class])
		}
		rows = append(rows, row)
	}
	return rows
}

func allDatasetsRows(datasets []model.Dataset) [][]interface{} {
	header := []interface{}{"Dataset Name", "Description", "Files Count"}
	for _, class := range model.ClassNames {
		header = append(header, "Total "+class)
	}
	header = append(header, "Created Date")

	rows := [][]interface{}{
		{"All Datasets Summary"},
		{"Total Datasets", len(datasets)},
		{"Export Date", time.Now().UTC().Format(exportDateLayout)},
		{},
		header,
	}

	for i := range datasets {
		dataset := &datasets[i]
		total := dataset.ModelOutput.AggregateSummary()
		row := []interface{}{
			dataset.Name,
			orDefault(dataset.Description),
			dataset.ModelOutput.FileCount(),
		}
		for _, class := range model.ClassNames {
			row = append(row, total[class])
		}
		row = append(row, dataset.CreatedAt.Format(exportDateLayout))
		rows = append(rows, row)
	}
	return rows
}

func singleDatasetSheetRows(dataset *model.Dataset) [][]interface{} {
	rows := [][]interface{}{
		{dataset.Name},
		{"Description", orDefault(dataset.Description)},
		{"Created At", dataset.CreatedAt.Format(exportDateLayout)},
		{},
	}
	if dataset.ModelOutput.IsMultiple() {
		rows = append(rows, []interface{}{"File Details"})
		rows = append(rows, datasetDetailRows(dataset.ModelOutput.Results)...)
	} else {
		rows = append(rows, []interface{}{"Prediction Summary"})
		rows = append(rows, summaryRows(dataset.ModelOutput.Summary)...)
	}
	return rows
}
