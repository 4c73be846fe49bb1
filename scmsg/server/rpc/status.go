package rpc

import (
	"time"

	"github.com/sjy-dv/scmsg/scmsg/server"
	"google.golang.org/protobuf/types/known/structpb"
)

// EndpointStatus is the admin view of one registered endpoint.
type EndpointStatus struct {
	Address     string
	State       string
	Clients     int64
	Connections int64
	RecentPeers []PeerStatus
}

type PeerStatus struct {
	ID       string
	Remote   string
	OpenedAt string
	ClosedAt string
	Error    string
}

func StatusOf(ep *server.Endpoint) EndpointStatus {
	st := EndpointStatus{
		Address:     ep.Addr(),
		State:       ep.State().String(),
		Clients:     int64(ep.ClientCount()),
		Connections: int64(ep.ConnNum()),
	}
	for _, p := range ep.RecentPeers() {
		ps := PeerStatus{
			ID:       p.ID,
			Remote:   p.Remote,
			OpenedAt: p.OpenedAt.UTC().Format(time.RFC3339Nano),
			Error:    p.Err,
		}
		if !p.ClosedAt.IsZero() {
			ps.ClosedAt = p.ClosedAt.UTC().Format(time.RFC3339Nano)
		}
		st.RecentPeers = append(st.RecentPeers, ps)
	}
	return st
}

// EndpointsToStruct encodes statuses as {"endpoints": [...]}.
func EndpointsToStruct(statuses []EndpointStatus) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(statuses))
	for _, st := range statuses {
		peers := make([]interface{}, 0, len(st.RecentPeers))
		for _, p := range st.RecentPeers {
			peers = append(peers, map[string]interface{}{
				"id":        p.ID,
				"remote":    p.Remote,
				"opened_at": p.OpenedAt,
				"closed_at": p.ClosedAt,
				"error":     p.Error,
			})
		}
		list = append(list, map[string]interface{}{
			"address":      st.Address,
			"state":        st.State,
			"clients":      st.Clients,
			"connections":  st.Connections,
			"recent_peers": peers,
		})
	}
	return structpb.NewStruct(map[string]interface{}{"endpoints": list})
}

// EndpointsFromStruct is the inverse of EndpointsToStruct. Missing fields
// decode to zero values.
func EndpointsFromStruct(s *structpb.Struct) []EndpointStatus {
	values := s.GetFields()["endpoints"].GetListValue().GetValues()
	out := make([]EndpointStatus, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		st := EndpointStatus{
			Address:     f["address"].GetStringValue(),
			State:       f["state"].GetStringValue(),
			Clients:     int64(f["clients"].GetNumberValue()),
			Connections: int64(f["connections"].GetNumberValue()),
		}
		for _, pv := range f["recent_peers"].GetListValue().GetValues() {
			pf := pv.GetStructValue().GetFields()
			st.RecentPeers = append(st.RecentPeers, PeerStatus{
				ID:       pf["id"].GetStringValue(),
				Remote:   pf["remote"].GetStringValue(),
				OpenedAt: pf["opened_at"].GetStringValue(),
				ClosedAt: pf["closed_at"].GetStringValue(),
				Error:    pf["error"].GetStringValue(),
			})
		}
		out = append(out, st)
	}
	return out
}
