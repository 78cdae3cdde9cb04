// Package instance wires the host callbacks of one model instance into the
// adapters model code uses.
//
//	inst, err := instance.Instantiate("pendulum", callbacks,
//		instance.WithComponent(c),
//		instance.WithDebugLogging(loggingOn))
//	if err != nil {
//		return nil, err
//	}
//	defer inst.Close()
//
//	state, err := instance.NewState(inst, func(s *State) error {
//		s.Length = 1.0
//		return nil
//	})
//
// Model code allocates through inst.Memory() and logs through inst.Logger().
// Nothing here is synchronized; drive an instance from one goroutine at a
// time.
package instance
