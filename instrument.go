package rochambeau

import "github.com/pkg/errors"

type Instrument interface {
	NewInstance(id string, self PeerID) InstrumentInstance
}

type InstrumentInstance interface {
	// wire
	DatagramTx(d Datagram)
	DatagramRx(d Datagram)
	MalformedDatagram(sz int)
	ReadError(err error)
	WriteError(err error)

	// barrier
	StartObserved(peer PeerID, count int)
	BarrierSatisfied(count int)

	// round
	OpponentMove(peer PeerID, move Move)
	RoundResolved(r *RoundResult)
	Anomaly(d Datagram, reason string)

	// termination
	PeerFinished(peer PeerID, finished int)
	Terminated()

	// instrument lifecycle
	Shutdown()
}

func NewInstrument(name string, config map[string]interface{}) (i Instrument, err error) {
	switch name {
	case "nil":
		return NewNilInstrument(), nil
	case "trace":
		return NewTraceInstrument(config)
	case "metrics":
		return NewMetricsInstrument(config)
	default:
		return nil, errors.Errorf("unknown instrument '%s'", name)
	}
}
