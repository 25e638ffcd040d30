package trajectory

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/md"
)

var twoAtoms = md.Coords{{0, 0, 0}, {0, 0, 1}}

func shifted(c md.Coords, by float64) md.Coords {
	out := c.Clone()
	for i := range out {
		for k := 0; k < 3; k++ {
			out[i][k] += by
		}
	}
	return out
}

var _ = Describe("Trajectory", func() {
	var traj *Trajectory

	BeforeEach(func() {
		traj = New([]string{"He", "He"})
	})

	Describe("New", func() {
		It("starts empty with the given labels", func() {
			Expect(traj.Len()).To(Equal(0))
			Expect(traj.NumAtoms()).To(Equal(2))
			Expect(traj.Labels()).To(Equal([]string{"He", "He"}))
		})

		It("copies the labels", func() {
			labels := []string{"H"}
			t := New(labels)
			labels[0] = "He"
			Expect(t.Labels()).To(Equal([]string{"H"}))
		})
	})

	Describe("AddFrame", func() {
		It("stores a deep copy", func() {
			pos := twoAtoms.Clone()
			Expect(traj.AddFrame(pos)).To(Succeed())
			pos[0][0] = 7

			Expect(traj.Len()).To(Equal(1))
			Expect(traj.Frame(0)[0][0]).To(Equal(0.0))
		})

		It("rejects frames with the wrong atom count", func() {
			err := traj.AddFrame(md.Coords{{0, 0, 0}})
			Expect(err).To(MatchError(md.ErrShapeMismatch))
			Expect(traj.Len()).To(Equal(0))
		})
	})

	Describe("FindBreakFrame", func() {
		It("returns the first frame that moved past the threshold", func() {
			for i := 0; i < 5; i++ {
				Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			}
			Expect(traj.AddFrame(shifted(twoAtoms, 1))).To(Succeed())

			Expect(traj.FindBreakFrame(0.1)).To(Equal(5))
		})

		It("counts recorded frames, not simulation steps", func() {
			for i := 0; i < 25; i++ {
				Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			}
			for i := 0; i < 10; i++ {
				Expect(traj.AddFrame(shifted(twoAtoms, 1))).To(Succeed())
			}

			frame := traj.FindBreakFrame(0.1)
			Expect(frame).To(Equal(25))
			Expect(StepOf(frame, 100)).To(Equal(2500))
		})

		It("uses a strict comparison against the threshold", func() {
			Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			Expect(traj.AddFrame(shifted(twoAtoms, 0.5))).To(Succeed())
			Expect(traj.AddFrame(shifted(twoAtoms, 0.75))).To(Succeed())

			Expect(traj.FindBreakFrame(0.5)).To(Equal(2))
		})

		It("falls back to frame 0 when nothing moved", func() {
			for i := 0; i < 4; i++ {
				Expect(traj.AddFrame(shifted(twoAtoms, 0.01*float64(i)))).To(Succeed())
			}

			Expect(traj.FindBreakFrame(0.1)).To(Equal(0))
			frame, ok := traj.DetectBreak(0.1)
			Expect(ok).To(BeFalse())
			Expect(frame).To(Equal(0))
		})

		It("returns 0 for an empty trajectory", func() {
			Expect(traj.FindBreakFrame(0.1)).To(Equal(0))
			Expect(traj.MaxDisplacements()).To(BeEmpty())
		})

		It("reports per-frame displacements", func() {
			Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			moved := twoAtoms.Clone()
			moved[1][2] = -1.5
			Expect(traj.AddFrame(moved)).To(Succeed())

			Expect(traj.MaxDisplacements()).To(Equal([]float64{0, 2.5}))
		})
	})

	Describe("XYZ persistence", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "traj.xyz")
		})

		It("writes the documented layout", func() {
			Expect(traj.AddFrame(md.Coords{{0, 0, 0}, {0, 0, 1.25}})).To(Succeed())

			var buf bytes.Buffer
			Expect(traj.WriteXYZ(&buf)).To(Succeed())
			Expect(buf.String()).To(Equal(
				"2\nframe 0\n" +
					"He  0.0000000  0.0000000  0.0000000\n" +
					"He  0.0000000  0.0000000  1.2500000\n"))
		})

		It("round-trips frames within formatting precision", func() {
			rng := rand.New(rand.NewSource(3))
			labels := []string{"H", "He", "He"}
			src := New(labels)
			for f := 0; f < 4; f++ {
				frame := make(md.Coords, 3)
				for i := range frame {
					for k := 0; k < 3; k++ {
						frame[i][k] = 10*rng.Float64() - 5
					}
				}
				Expect(src.AddFrame(frame)).To(Succeed())
			}
			Expect(src.Save(path)).To(Succeed())

			loaded, err := LoadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Labels()).To(Equal(labels))
			Expect(loaded.Len()).To(Equal(src.Len()))
			for f := 0; f < src.Len(); f++ {
				Expect(loaded.Frame(f).MaxAbsDiff(src.Frame(f))).To(BeNumerically("<=", 1e-7))
			}
		})

		It("overwrites an existing file", func() {
			Expect(os.WriteFile(path, []byte(strings.Repeat("junk\n", 100)), 0644)).To(Succeed())
			Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			Expect(traj.Save(path)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(data), "\n")).To(Equal(4))
		})

		It("truncates an existing file when there are no frames", func() {
			Expect(os.WriteFile(path, []byte("2\nframe 0\nHe 0 0 0\nHe 0 0 1\n"), 0644)).To(Succeed())
			Expect(traj.Save(path)).To(Succeed())

			info, err := os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Size()).To(BeZero())
		})

		It("replaces in-memory frames on load", func() {
			Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			Expect(traj.AddFrame(twoAtoms)).To(Succeed())
			Expect(traj.Save(path)).To(Succeed())

			other := New([]string{"He", "He"})
			for i := 0; i < 5; i++ {
				Expect(other.AddFrame(shifted(twoAtoms, 3))).To(Succeed())
			}
			Expect(other.Load(path)).To(Succeed())
			Expect(other.Len()).To(Equal(2))
			Expect(other.Frame(1)).To(Equal(twoAtoms))
		})

		It("accepts any whitespace and float notation", func() {
			input := "2\ncomment\nHe\t1e-1 -2.5E+0   3\n  He 0 0 .5\n"
			Expect(traj.ReadXYZ(strings.NewReader(input))).To(Succeed())
			Expect(traj.Frame(0)).To(Equal(md.Coords{{0.1, -2.5, 3}, {0, 0, 0.5}}))
		})

		It("rejects labels that differ from the trajectory", func() {
			input := "2\nframe 0\nH 0 0 0\nH 0 0 1\n"
			err := traj.ReadXYZ(strings.NewReader(input))
			Expect(err).To(MatchError(md.ErrShapeMismatch))
		})

		It("fails on a missing file", func() {
			Expect(traj.Load(filepath.Join(GinkgoT().TempDir(), "missing.xyz"))).NotTo(Succeed())
		})

		DescribeTable("rejects malformed input",
			func(input string, line int) {
				before := traj.Len()
				err := traj.ReadXYZ(strings.NewReader(input))
				Expect(err).To(MatchError(md.ErrFormat))

				var fe *FormatError
				Expect(err).To(BeAssignableToTypeOf(fe))
				Expect(err.(*FormatError).Line).To(Equal(line))
				Expect(traj.Len()).To(Equal(before))
			},
			Entry("empty file", "", 1),
			Entry("non-numeric count", "two\nframe 0\nHe 0 0 0\nHe 0 0 1\n", 1),
			Entry("truncated frame", "2\nframe 0\nHe 0 0 0\nHe 0 0 1\n2\nframe 1\nHe 0 0 0\n", 7),
			Entry("inconsistent declared count", "2\nframe 0\nHe 0 0 0\nHe 0 0 1\n3\nframe 1\nHe 0 0 0\nHe 0 0 1\n", 5),
			Entry("bad coordinate", "2\nframe 0\nHe 0 0 0\nHe 0 x 1\n", 4),
			Entry("missing coordinate", "2\nframe 0\nHe 0 0\nHe 0 0 1\n", 3),
			Entry("label change between frames", "2\nf\nHe 0 0 0\nHe 0 0 1\n2\nf\nHe 0 0 0\nH 0 0 1\n", 5),
		)
	})
})
