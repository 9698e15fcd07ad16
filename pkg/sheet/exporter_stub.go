package sheet

import "context"

type ExporterStub struct {
	appendErr error
	appended  map[string][]Table
}

func NewExporterStub() *ExporterStub {
	return &ExporterStub{appended: make(map[string][]Table)}
}

func (e *ExporterStub) SetError(err error) {
	e.appendErr = err
}

func (e *ExporterStub) Appended(spreadsheetId string) []Table {
	return e.appended[spreadsheetId]
}

func (e *ExporterStub) AppendTable(_ context.Context, spreadsheetId string, table Table) error {
	if e.appendErr != nil {
		return e.appendErr
	}
	e.appended[spreadsheetId] = append(e.appended[spreadsheetId], table)
	return nil
}
