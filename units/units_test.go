package units

import (
	"testing"

	"github.com/y86pipe/y86pipe-go/isa"
	"github.com/y86pipe/y86pipe-go/memory"
	"github.com/y86pipe/y86pipe-go/stage"
)

func TestFetchIRMovQ(t *testing.T) {
	// irmovq $0xcba, %rdx : icode=3 ifun=0, rA=0xF rB=RDX, valC=0xcba
	img := []byte{0x30, 0xF2, 0xba, 0x0c, 0, 0, 0, 0, 0, 0}
	mem, err := memory.NewFromImage(64, img)
	if err != nil {
		t.Fatal(err)
	}
	out := Fetch(mem, 0)
	if out.Status != stage.Aok {
		t.Fatalf("status = %v, want Aok", out.Status)
	}
	if out.Icode != isa.IIRMovQ || out.RB != isa.RDX || out.ValC != 0xcba {
		t.Fatalf("out = %+v", out)
	}
	if out.ValP != 10 {
		t.Fatalf("valP = %d, want 10", out.ValP)
	}
}

func TestFetchHalt(t *testing.T) {
	mem, _ := memory.NewFromImage(8, []byte{0x00})
	out := Fetch(mem, 0)
	if out.Icode != isa.IHalt || out.Status != stage.Aok || out.ValP != 1 {
		t.Fatalf("out = %+v", out)
	}
}

func TestFetchInvalidInstruction(t *testing.T) {
	mem, _ := memory.NewFromImage(8, []byte{0xFF})
	out := Fetch(mem, 0)
	if out.Status != stage.Ins {
		t.Fatalf("status = %v, want Ins", out.Status)
	}
}

func TestFetchAddressOutOfRange(t *testing.T) {
	mem := memory.New(4)
	out := Fetch(mem, 100)
	if out.Status != stage.Adr {
		t.Fatalf("status = %v, want Adr", out.Status)
	}
}

func TestDataMemReadWrite(t *testing.T) {
	mem := memory.New(64)
	if out := DataMem(mem, 8, 0x1234, false, true); out.Status != stage.Aok {
		t.Fatalf("write status = %v", out.Status)
	}
	out := DataMem(mem, 8, 0, true, false)
	if out.Status != stage.Aok || out.ValM != 0x1234 {
		t.Fatalf("read back = %+v, want valM=0x1234", out)
	}
}

func TestDataMemOutOfRange(t *testing.T) {
	mem := memory.New(4)
	out := DataMem(mem, 100, 0, true, false)
	if out.Status != stage.Adr {
		t.Fatalf("status = %v, want Adr", out.Status)
	}
}
