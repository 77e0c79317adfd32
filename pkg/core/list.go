package core

import (
	"context"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/errors"
	"github.com/oneconcern/datahub/pkg/transport"
)

const (
	paramOffset     = "offset"
	paramLimit      = "limit"
	totalCountField = "totalCount"
)

// pageOf builds the fetch function of a paged sequence over some listing resource.
//
// The server responds with a JSON object holding the items of the page under key,
// and the size of the whole collection under "totalCount".
func pageOf[T any](c *Client, req transport.Request, key string) pager.FetchFunc[T] {
	return func(ctx context.Context, offset, limit int) ([]T, int, error) {
		r := req
		r.Query = mergeQuery(req.Query, url.Values{
			paramOffset: []string{strconv.Itoa(offset)},
			paramLimit:  []string{strconv.Itoa(limit)},
		})

		var raw map[string]jsoniter.RawMessage
		if err := c.do(ctx, r, &raw); err != nil {
			return nil, 0, err
		}

		var items []T
		if data, ok := raw[key]; ok {
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, 0, status.ErrUnexpectedResponse.Wrap(err)
			}
		}

		total := offset + len(items)
		if data, ok := raw[totalCountField]; ok {
			if err := json.Unmarshal(data, &total); err != nil {
				return nil, 0, status.ErrUnexpectedResponse.Wrap(err)
			}
		}
		return items, total, nil
	}
}

// mergeQuery returns a new set of query parameters. Values from the later sets override earlier ones.
func mergeQuery(sets ...url.Values) url.Values {
	merged := make(url.Values)
	for _, set := range sets {
		for k, v := range set {
			merged[k] = append([]string(nil), v...)
		}
	}
	return merged
}

func isNotExist(err error) bool {
	return errors.Is(err, status.ErrResourceNotExist)
}

// lookupOf builds a lookup by name over some listing resource, filtered server-side with the param query parameter
func lookupOf[T any](c *Client, req transport.Request, key, param string, nameOf func(T) string) pager.LookupFunc[T] {
	return func(ctx context.Context, name string) (T, error) {
		var zero T
		r := req
		r.Query = mergeQuery(req.Query, url.Values{param: []string{name}})
		items, _, err := pageOf[T](c, r, key)(ctx, 0, 1)
		if err != nil {
			return zero, err
		}
		for _, item := range items {
			if nameOf(item) == name {
				return item, nil
			}
		}
		return zero, status.ErrResourceNotExist.WrapMessage("%s %q", key, name)
	}
}
