package xnat

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/model"
)

type envelope struct {
	ResultSet *resultSet `json:"ResultSet"`
}

type resultSet struct {
	TotalRecords totalRecords   `json:"totalRecords"`
	Result       []model.Record `json:"Result"`
}

// totalRecords accepts both `"3"` and `3`; XNAT emits the former.
type totalRecords int

func (n *totalRecords) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return goerr.Wrap(err, "invalid totalRecords", goerr.V("value", string(data)))
	}
	*n = totalRecords(v)
	return nil
}

func decodeResultSet(r io.Reader) (*model.ResultSet, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var env envelope
	if err := decoder.Decode(&env); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ResultSet envelope")
	}

	if env.ResultSet == nil {
		return &model.ResultSet{}, nil
	}

	total := int(env.ResultSet.TotalRecords)
	if total == 0 && len(env.ResultSet.Result) > 0 {
		total = len(env.ResultSet.Result)
	}

	return &model.ResultSet{
		TotalRecords: total,
		Result:       env.ResultSet.Result,
	}, nil
}
