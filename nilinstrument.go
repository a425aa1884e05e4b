package rochambeau

type nilInstrument struct{}

func NewNilInstrument() Instrument {
	return &nilInstrument{}
}

func (self *nilInstrument) NewInstance(string, PeerID) InstrumentInstance {
	return &nilInstrumentInstance{}
}

type nilInstrumentInstance struct{}

/*
 * wire
 */
func (self *nilInstrumentInstance) DatagramTx(Datagram)  {}
func (self *nilInstrumentInstance) DatagramRx(Datagram)  {}
func (self *nilInstrumentInstance) MalformedDatagram(int) {}
func (self *nilInstrumentInstance) ReadError(error)       {}
func (self *nilInstrumentInstance) WriteError(error)      {}

/*
 * barrier
 */
func (self *nilInstrumentInstance) StartObserved(PeerID, int) {}
func (self *nilInstrumentInstance) BarrierSatisfied(int)      {}

/*
 * round
 */
func (self *nilInstrumentInstance) OpponentMove(PeerID, Move)  {}
func (self *nilInstrumentInstance) RoundResolved(*RoundResult) {}
func (self *nilInstrumentInstance) Anomaly(Datagram, string)   {}

/*
 * termination
 */
func (self *nilInstrumentInstance) PeerFinished(PeerID, int) {}
func (self *nilInstrumentInstance) Terminated()              {}

/*
 * instrument lifecycle
 */
func (self *nilInstrumentInstance) Shutdown() {}
